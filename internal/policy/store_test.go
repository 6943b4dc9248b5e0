package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openarchive/authz/internal/persist/fake"
	"github.com/openarchive/authz/internal/policy"
	. "github.com/openarchive/authz/internal/testdata"
	. "github.com/openarchive/authz/types"
)

func TestPolicy(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "policy test suit")
}

var _ = Describe("policy store", func() {
	stores := []struct {
		name string
		make func() policy.Store
	}{
		{
			name: "plain",
			make: func() policy.Store { return policy.NewStore() },
		},
		{
			name: "synced",
			make: func() policy.Store { return policy.NewSyncedStore(policy.NewStore()) },
		},
		{
			name: "persisted",
			make: func() policy.Store {
				ctx := context.Background()
				s, e := policy.NewPersistedStore(ctx, policy.NewSyncedStore(policy.NewStore()), fake.NewPolicyPersister(ctx), GinkgoLogr)
				Expect(e).To(Succeed())
				return s
			},
		},
	}

	for _, ts := range stores {
		ts := ts
		Context(ts.name, func() {
			var s policy.Store

			BeforeEach(func() {
				s = ts.make()
				for _, spec := range ReaderPolicies {
					_, e := s.Create(spec)
					Expect(e).To(Succeed())
				}
			})

			Describe("creating", func() {
				It("assigns ids and stores the grant", func() {
					created, e := s.Create(PolicySpec{
						Object:  Item("thesis"),
						Action:  Write,
						Subject: EPerson("9"),
						Type:    TypeCustom,
					})
					Expect(e).To(Succeed())
					Expect(created.ID).NotTo(BeEmpty())

					got, e := s.Get(created.ID)
					Expect(e).To(Succeed())
					Expect(got.Object).To(Equal(Object(Item("thesis"))))
					Expect(got.Action).To(Equal(Write))
					Expect(got.Subject).To(Equal(Subject(EPerson("9"))))
				})

				It("rejects a spec with no object", func() {
					_, e := s.Create(PolicySpec{Action: Read, Subject: EPerson("0")})
					Expect(e).To(MatchError(ErrInvalidObject))
				})

				It("rejects a spec with no action", func() {
					_, e := s.Create(PolicySpec{Object: Item("thesis"), Subject: EPerson("0")})
					Expect(e).To(MatchError(ErrUnknownAction))
				})

				It("rejects a spec with no subject", func() {
					_, e := s.Create(PolicySpec{Object: Item("thesis"), Action: Read})
					Expect(e).To(MatchError(ErrIncompleteSubject))
				})

				It("rejects an identical grant", func() {
					_, e := s.Create(ReaderPolicies[0])
					Expect(e).To(MatchError(ErrDuplicatePolicy))
				})

				It("accepts the same grant with a different window", func() {
					spec := ReaderPolicies[0]
					start := NewDate(2030, time.January, 1)
					spec.StartDate = &start
					_, e := s.Create(spec)
					Expect(e).To(Succeed())
				})
			})

			Describe("listing by object", func() {
				It("keeps insertion order", func() {
					policies, e := s.ByObject(Item("thesis"), None)
					Expect(e).To(Succeed())
					Expect(policies).To(HaveLen(2))
					Expect(policies[0].Subject).To(Equal(Subject(EPerson("0"))))
					Expect(policies[1].Subject).To(Equal(Subject(Group("3_0"))))
				})

				It("filters by overlapping action", func() {
					policies, e := s.ByObject(Collection("theses"), Add)
					Expect(e).To(Succeed())
					Expect(policies).To(HaveLen(1))
					Expect(policies[0].Subject).To(Equal(Subject(EPerson("1"))))

					policies, e = s.ByObject(Collection("theses"), Delete)
					Expect(e).To(Succeed())
					Expect(policies).To(BeEmpty())
				})
			})

			Describe("listing by subject", func() {
				It("lists every grant of the subject", func() {
					policies, e := s.BySubject(EPerson("1"), nil)
					Expect(e).To(Succeed())
					Expect(policies).To(HaveLen(1))
					Expect(policies[0].Object).To(Equal(Object(Collection("theses"))))
				})

				It("restricts to one object", func() {
					policies, e := s.BySubject(Group("3_0"), Item("thesis"))
					Expect(e).To(Succeed())
					Expect(policies).To(HaveLen(1))

					policies, e = s.BySubject(Group("3_0"), Collection("theses"))
					Expect(e).To(Succeed())
					Expect(policies).To(BeEmpty())
				})
			})

			Describe("updating", func() {
				var id string

				BeforeEach(func() {
					policies, e := s.ByObject(Item("thesis"), None)
					Expect(e).To(Succeed())
					id = policies[0].ID
				})

				It("replaces the window", func() {
					start := NewDate(2030, time.June, 1)
					end := NewDate(2030, time.December, 31)
					updated, e := s.UpdateWindow(id, &start, &end)
					Expect(e).To(Succeed())
					Expect(updated.StartDate).To(Equal(&start))
					Expect(updated.EndDate).To(Equal(&end))
				})

				It("clears the window with nil bounds", func() {
					start := NewDate(2030, time.June, 1)
					_, e := s.UpdateWindow(id, &start, nil)
					Expect(e).To(Succeed())

					updated, e := s.UpdateWindow(id, nil, nil)
					Expect(e).To(Succeed())
					Expect(updated.StartDate).To(BeNil())
					Expect(updated.EndDate).To(BeNil())
				})

				It("replaces the subject and reindexes", func() {
					updated, e := s.UpdateSubject(id, EPerson("5"))
					Expect(e).To(Succeed())
					Expect(updated.Subject).To(Equal(Subject(EPerson("5"))))

					policies, e := s.BySubject(EPerson("0"), nil)
					Expect(e).To(Succeed())
					Expect(policies).To(BeEmpty())

					policies, e = s.BySubject(EPerson("5"), nil)
					Expect(e).To(Succeed())
					Expect(policies).To(HaveLen(1))
				})

				It("refuses a nil subject", func() {
					_, e := s.UpdateSubject(id, nil)
					Expect(e).To(MatchError(ErrIncompleteSubject))
				})

				It("refuses updates to unknown policies", func() {
					_, e := s.UpdateWindow("no-such-id", nil, nil)
					Expect(e).To(MatchError(ErrNotFound))
				})
			})

			Describe("deleting", func() {
				It("removes one policy by id", func() {
					policies, e := s.ByObject(Bitstream("thesis.pdf"), None)
					Expect(e).To(Succeed())
					Expect(policies).To(HaveLen(1))

					Expect(s.Delete(policies[0].ID)).To(Succeed())

					_, e = s.Get(policies[0].ID)
					Expect(e).To(MatchError(ErrNotFound))
				})

				It("reports deleting an unknown policy", func() {
					Expect(s.Delete("no-such-id")).To(MatchError(ErrNotFound))
				})

				It("removes every policy on an object", func() {
					Expect(s.RemoveByObject(Item("thesis"))).To(Succeed())
					Expect(s.ByObject(Item("thesis"), None)).To(BeEmpty())

					policies, e := s.BySubject(Group("3_0"), nil)
					Expect(e).To(Succeed())
					Expect(policies).To(BeEmpty())
				})

				It("removes every policy of a subject", func() {
					Expect(s.RemoveBySubject(EPerson("0"))).To(Succeed())
					Expect(s.BySubject(EPerson("0"), nil)).To(BeEmpty())

					policies, e := s.ByObject(Item("thesis"), None)
					Expect(e).To(Succeed())
					Expect(policies).To(HaveLen(1))
					Expect(policies[0].Subject).To(Equal(Subject(Group("3_0"))))
				})
			})

			Describe("mutation isolation", func() {
				It("hands out copies, not the stored record", func() {
					policies, e := s.ByObject(Item("thesis"), None)
					Expect(e).To(Succeed())
					policies[0].Action = AllActions

					again, e := s.ByObject(Item("thesis"), None)
					Expect(e).To(Succeed())
					Expect(again[0].Action).To(Equal(Read))
				})
			})
		})
	}
})

// updateFailingPersister rejects every update while passing the other
// operations through
type updateFailingPersister struct {
	PolicyPersister
	fail error
}

func (p updateFailingPersister) Update(Policy) error { return p.fail }

var _ = Describe("write-through failures", func() {
	var (
		s     policy.Store
		id    string
		eBoom = errors.New("connection reset")
	)

	BeforeEach(func() {
		ctx := context.Background()
		var e error
		s, e = policy.NewPersistedStore(ctx,
			policy.NewSyncedStore(policy.NewStore()),
			updateFailingPersister{PolicyPersister: fake.NewPolicyPersister(ctx), fail: eBoom},
			GinkgoLogr)
		Expect(e).To(Succeed())

		created, e := s.Create(PolicySpec{
			Object:  Item("thesis"),
			Action:  Read,
			Subject: Group("campus"),
			Type:    TypeCustom,
		})
		Expect(e).To(Succeed())
		id = created.ID
	})

	It("rolls a window update back when it cannot persist", func() {
		start := NewDate(2024, time.September, 1)
		_, e := s.UpdateWindow(id, &start, nil)
		Expect(e).To(MatchError(eBoom))

		got, e := s.Get(id)
		Expect(e).To(Succeed())
		Expect(got.StartDate).To(BeNil())
	})

	It("rolls a subject update back when it cannot persist", func() {
		_, e := s.UpdateSubject(id, Group("visitors"))
		Expect(e).To(MatchError(eBoom))

		got, e := s.Get(id)
		Expect(e).To(Succeed())
		Expect(got.Subject).To(Equal(Subject(Group("campus"))))

		strays, e := s.BySubject(Group("visitors"), nil)
		Expect(e).To(Succeed())
		Expect(strays).To(BeEmpty())
	})
})
