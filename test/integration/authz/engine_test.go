// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

//go:build integration

package authz_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"go.uber.org/goleak"

	"github.com/rolecall/rolecall/pkg/authz"
	"github.com/rolecall/rolecall/pkg/rolefile"
)

const userPolicyDoc = `
roles:
  - name: admin
    detect: 'user.admin == true'
    grants:
      - actions: [edit, delete]
        on: user
  - name: owner
    detect: 'user.id == target.id'
    grants:
      - actions: [edit]
        on: user
  - name: anyone
    grants:
      - actions: [read]
        on: user
`

func user(id string, admin bool) authz.Record {
	return authz.Record{Kind: "user", Attrs: map[string]any{"id": id, "admin": admin}}
}

var _ = Describe("Authorization engine", func() {
	var (
		reg  *authz.Registry
		auth *authz.Authorizer
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = authz.NewRegistry()

		doc, err := rolefile.Parse([]byte(userPolicyDoc))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Apply(reg)).To(Succeed())

		auth = authz.NewAuthorizer(reg)
	})

	Describe("the representative user policy", func() {
		It("grants read to everyone, including absent users", func() {
			ok, err := auth.CanAs(ctx, user("u1", false), "read", user("u2", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = auth.CanAs(ctx, nil, "read", user("u2", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("grants edit and delete to admins on any user", func() {
			for _, action := range []authz.Action{"edit", "delete"} {
				ok, err := auth.CanAs(ctx, user("a1", true), action, user("u1", false))
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue(), "action %s", action)
			}
		})

		It("grants edit but not delete to owners on themselves", func() {
			ok, err := auth.CanAs(ctx, user("u1", false), "edit", user("u1", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = auth.CanAs(ctx, user("u1", false), "delete", user("u1", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("denies everything once the registry is reset", func() {
			reg.Reset()
			ok, err := auth.CanAs(ctx, user("a1", true), "edit", user("u1", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("concurrent evaluation", func() {
		It("handles parallel checks without leaking goroutines", func() {
			defer goleak.VerifyNone(GinkgoT())

			const workers = 32
			const checksPerWorker = 50

			var wg sync.WaitGroup
			errs := make(chan error, workers)

			for w := range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range checksPerWorker {
						id := fmt.Sprintf("u%d-%d", w, i)
						ok, err := auth.CanAs(ctx, user(id, false), "edit", user(id, false))
						if err != nil {
							errs <- err
							return
						}
						if !ok {
							errs <- fmt.Errorf("owner check unexpectedly denied for %s", id)
							return
						}
					}
				}()
			}

			wg.Wait()
			close(errs)
			Expect(errs).To(BeEmpty())
		})

		It("allows defining roles while checks are in flight", func() {
			defer goleak.VerifyNone(GinkgoT())

			var wg sync.WaitGroup
			stop := make(chan struct{})

			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
						_, _ = auth.CanAs(ctx, user("u1", false), "read", user("u2", false))
					}
				}
			}()

			for i := range 16 {
				_, err := reg.Define(fmt.Sprintf("extra-%d", i), func(r *authz.RoleBuilder) {
					r.Can("widget", "read")
				})
				Expect(err).NotTo(HaveOccurred())
			}

			close(stop)
			wg.Wait()
			Expect(reg.Len()).To(Equal(3 + 16))
		})
	})
})
