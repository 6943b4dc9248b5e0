package authz_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openarchive/authz"
	"github.com/openarchive/authz/internal/persist/fake"
	. "github.com/openarchive/authz/types"
)

func TestAuthz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "authz test suit")
}

var _ = Describe("repository authorization end to end", func() {
	var (
		ctx = context.Background()
		now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
		a   Authorizer
	)

	buildTree := func(a Authorizer) {
		Expect(a.AddParent(Collection("theses"), Community("science"))).To(Succeed())
		Expect(a.AddParent(Item("thesis"), Collection("theses"))).To(Succeed())
		Expect(a.AddParent(Bundle("original"), Item("thesis"))).To(Succeed())
		Expect(a.AddParent(Bitstream("thesis.pdf"), Bundle("original"))).To(Succeed())
	}

	BeforeEach(func() {
		var e error
		a, e = authz.New(ctx, authz.WithLogger(GinkgoLogr))
		Expect(e).To(Succeed())
		buildTree(a)
	})

	Describe("a community administrator", func() {
		BeforeEach(func() {
			admins, e := a.CreateAdministrators(Community("science"))
			Expect(e).To(Succeed())
			Expect(a.JoinGroup(EPerson("walt"), admins)).To(Succeed())
		})

		It("administers everything below the community", func() {
			for _, obj := range []Object{Collection("theses"), Item("thesis"), Bitstream("thesis.pdf")} {
				d, e := a.Authorize(ctx, EPerson("walt"), obj, Write, now)
				Expect(e).To(Succeed())
				Expect(d.Allowed).To(BeTrue(), "walt should administer %s", obj)
			}
		})

		It("loses and regains item rights as the deployment toggles the hop", func() {
			cfg := a.Delegation()
			cfg.CommunityItemAdmin = false
			a.SetDelegation(cfg)

			d, e := a.Authorize(ctx, EPerson("walt"), Item("thesis"), Write, now)
			Expect(e).To(Succeed())
			Expect(d).To(Equal(Deny))

			d, e = a.Authorize(ctx, EPerson("walt"), Collection("theses"), Write, now)
			Expect(e).To(Succeed())
			Expect(d.Allowed).To(BeTrue(), "collection rights ride a different hop")

			cfg.CommunityItemAdmin = true
			a.SetDelegation(cfg)

			d, e = a.Authorize(ctx, EPerson("walt"), Item("thesis"), Write, now)
			Expect(e).To(Succeed())
			Expect(d.Allowed).To(BeTrue())
		})
	})

	Describe("an embargoed thesis", func() {
		BeforeEach(func() {
			Expect(a.JoinGroup(EPerson("pat"), Group("campus"))).To(Succeed())

			lift := NewDate(2024, time.September, 1)
			_, e := a.CreatePolicy(PolicySpec{
				Object:    Bitstream("thesis.pdf"),
				Action:    Read,
				Subject:   Group("campus"),
				StartDate: &lift,
				Type:      TypeCustom,
			})
			Expect(e).To(Succeed())
		})

		It("stays closed until the lift date, then opens", func() {
			d, e := a.Authorize(ctx, EPerson("pat"), Bitstream("thesis.pdf"), Read, now)
			Expect(e).To(Succeed())
			Expect(d).To(Equal(Deny))

			after := time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC)
			d, e = a.Authorize(ctx, EPerson("pat"), Bitstream("thesis.pdf"), Read, after)
			Expect(e).To(Succeed())
			Expect(d.Allowed).To(BeTrue())
		})

		It("never opens for outsiders", func() {
			after := time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC)
			d, e := a.Authorize(ctx, EPerson("sam"), Bitstream("thesis.pdf"), Read, after)
			Expect(e).To(Succeed())
			Expect(d).To(Equal(Deny))
		})
	})

	Describe("site administrators", func() {
		BeforeEach(func() {
			var e error
			a, e = authz.New(ctx,
				authz.WithLogger(GinkgoLogr),
				authz.WithSiteAdministrators(Group("site admins")),
			)
			Expect(e).To(Succeed())
			buildTree(a)
			Expect(a.JoinGroup(EPerson("root"), Group("site admins"))).To(Succeed())
		})

		It("bypass policies and delegation alike", func() {
			a.SetDelegation(DelegationConfig{})

			d, e := a.Authorize(ctx, EPerson("root"), Bitstream("thesis.pdf"), Admin, now)
			Expect(e).To(Succeed())
			Expect(d.Allowed).To(BeTrue())
			Expect(d.Source).To(Equal(SourcePreset))
		})
	})

	Describe("surviving a restart", func() {
		It("reloads memberships and policies from the persisters", func() {
			mp := fake.NewMembershipPersister(ctx)
			pp := fake.NewPolicyPersister(ctx)

			first, e := authz.New(ctx,
				authz.WithLogger(GinkgoLogr),
				authz.WithMembershipPersister(mp),
				authz.WithPolicyPersister(pp),
			)
			Expect(e).To(Succeed())
			buildTree(first)

			Expect(first.JoinGroup(EPerson("pat"), Group("campus"))).To(Succeed())
			created, e := first.CreatePolicy(PolicySpec{
				Object: Item("thesis"), Action: Read, Subject: Group("campus"), Type: TypeCustom,
			})
			Expect(e).To(Succeed())

			second, e := authz.New(ctx,
				authz.WithLogger(GinkgoLogr),
				authz.WithMembershipPersister(mp),
				authz.WithPolicyPersister(pp),
			)
			Expect(e).To(Succeed())
			// the object graph mirrors the repository database and is
			// rebuilt by the caller on startup
			buildTree(second)

			Expect(second.Memberships().IsMember(EPerson("pat"), Group("campus"))).To(BeTrue())

			reloaded, e := second.Policy(created.ID)
			Expect(e).To(Succeed())
			Expect(reloaded.Subject).To(Equal(Subject(Group("campus"))))

			d, e := second.Authorize(ctx, EPerson("pat"), Item("thesis"), Read, now)
			Expect(e).To(Succeed())
			Expect(d.Allowed).To(BeTrue())
		})
	})
})
