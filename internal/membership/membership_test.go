package membership_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/openarchive/authz/internal/membership"
	"github.com/openarchive/authz/internal/persist/fake"
	. "github.com/openarchive/authz/internal/testdata"
	. "github.com/openarchive/authz/types"
)

var _ = Describe("membership implementation", func() {
	Expect(EPersonGroups).NotTo(BeEmpty())
	Expect(GroupEPersons).NotTo(BeEmpty())

	var memberships = []struct {
		name string
		m    Membership
	}{
		{
			name: "slim",
			m:    NewSlimMembership(),
		},
		{
			name: "fat",
			m:    NewFatMembership(),
		},
		{
			name: "synced fat",
			m:    NewSyncedMembership(NewFatMembership()),
		},
		{
			name: "synced slim",
			m:    NewSyncedMembership(NewSlimMembership()),
		},
		{
			name: "persisted",
			m: func() Membership {
				ctx := context.Background()
				m, e := NewPersistedMembership(ctx, NewSyncedMembership(NewFatMembership()), fake.NewMembershipPersister(ctx), GinkgoLogr)
				Expect(e).To(Succeed())
				return m
			}(),
		},
	}

	for _, tm := range memberships {
		Context(tm.name, func() {
			m := tm.m

			BeforeEach(func() {
				for person, groups := range EPersonGroups {
					for _, group := range groups {
						Expect(m.Join(person, group)).To(Succeed())
					}
				}
			})

			It("should contain initial epersons", func() {
				Expect(m.AllEPersons()).To(haveExactKeys(
					EPerson("0"), EPerson("1"), EPerson("2"), EPerson("3"), EPerson("4"),
					EPerson("5"), EPerson("6"), EPerson("7"), EPerson("8"), EPerson("9"),
				))
			})

			It("should contain initial groups", func() {
				Expect(m.AllGroups()).To(haveExactKeys(
					Group("2_0"), Group("2_1"),
					Group("3_0"), Group("3_1"), Group("3_2"),
					Group("5_0"), Group("5_1"), Group("5_2"), Group("5_3"), Group("5_4"),
				))
			})

			Context("querying groups of eperson", func() {
				for person, groups := range EPersonGroups {
					person, groups := person, groups
					It(fmt.Sprintf("should know groups of %s", person), func() {
						Expect(m.GroupsOf(person)).To(haveExactKeys(func() []interface{} {
							is := make([]interface{}, 0, len(groups))
							for _, group := range groups {
								is = append(is, group)
							}
							return is
						}()...))
					})
				}
			})

			Context("querying epersons of group", func() {
				for group, persons := range GroupEPersons {
					group, persons := group, persons
					It(fmt.Sprintf("should know members of %s", group), func() {
						Expect(m.MembersOf(group)).To(haveExactKeys(func() []interface{} {
							is := make([]interface{}, 0, len(persons))
							for _, person := range persons {
								is = append(is, person)
							}
							return is
						}()...))
					})
				}
			})

			Context("checking memberships", func() {
				for person, groups := range EPersonGroups {
					for _, group := range groups {
						person, group := person, group
						It(fmt.Sprintf("should know %s is in %s", person, group), func() {
							Expect(m.IsMember(person, group)).To(BeTrue())
						})
					}
				}

				for _, tc := range []struct {
					person EPerson
					group  Group
				}{
					{person: EPerson("1"), group: Group("2_0")},
					{person: EPerson("4"), group: Group("3_0")},
					{person: EPerson("4"), group: Group("3_2")},
					{person: EPerson("6"), group: Group("2_1")},
					{person: EPerson("6"), group: Group("3_1")},
					{person: EPerson("6"), group: Group("3_2")},
				} {
					tc := tc
					It(fmt.Sprintf("should know %s is not in %s", tc.person, tc.group), func() {
						Expect(m.IsMember(tc.person, tc.group)).To(BeFalse())
					})
				}
			})

			DescribeTable("eperson leaves group",
				func(person EPerson, group Group) {
					Expect(m.Leave(person, group)).To(Succeed())
					Expect(m.GroupsOf(person)).NotTo(HaveKey(group), fmt.Sprintf("%s should not be in groups of %s", group, person))
					Expect(m.MembersOf(group)).NotTo(HaveKey(person), fmt.Sprintf("%s should not be in members of %s", person, group))
					Expect(m.IsMember(person, group)).NotTo(BeTrue(), fmt.Sprintf("%s should not be in %s", person, group))
				},
				Entry("eperson 1 leaves group 3_1", EPerson("1"), Group("3_1")),
				Entry("eperson 7 leaves group 5_2", EPerson("7"), Group("5_2")),
				Entry("eperson 6 leaves group 3_0", EPerson("6"), Group("3_0")),
			)

			It("rejects leaving a group never joined", func() {
				Expect(m.Leave(EPerson("1"), Group("2_0"))).To(MatchError(ErrNotFound))
			})

			Describe("removing group", func() {
				BeforeEach(func() {
					Expect(m.RemoveGroup(Group("3_2"))).To(Succeed())
				})

				It("should remove it from all groups", func() {
					Expect(m.AllGroups()).NotTo(HaveKey(Group("3_2")))
				})

				DescribeTable("should remove it from groups of its members",
					func(person EPerson) {
						Expect(m.GroupsOf(person)).NotTo(HaveKey(Group("3_2")))
					},
					Entry("eperson 2", EPerson("2")),
					Entry("eperson 5", EPerson("5")),
					Entry("eperson 8", EPerson("8")),
				)

				DescribeTable("members should not be in it anymore",
					func(person EPerson) {
						Expect(m.IsMember(person, Group("3_2"))).NotTo(BeTrue())
					},
					Entry("eperson 2", EPerson("2")),
					Entry("eperson 5", EPerson("5")),
					Entry("eperson 8", EPerson("8")),
				)
			})

			Describe("removing eperson", func() {
				BeforeEach(func() {
					Expect(m.RemoveEPerson(EPerson("2"))).To(Succeed())
				})

				It("should remove it from all epersons", func() {
					Expect(m.AllEPersons()).NotTo(HaveKey(EPerson("2")))
				})

				DescribeTable("should remove it from members of its groups",
					func(group Group) {
						Expect(m.MembersOf(group)).NotTo(HaveKey(EPerson("2")))
					},
					Entry("group 2_0", Group("2_0")),
					Entry("group 3_2", Group("3_2")),
					Entry("group 5_2", Group("5_2")),
				)

				DescribeTable("should remove memberships about it",
					func(group Group) {
						Expect(m.IsMember(EPerson("2"), group)).To(BeFalse())
					},
					Entry("group 2_0", Group("2_0")),
					Entry("group 3_2", Group("3_2")),
					Entry("group 5_2", Group("5_2")),
				)
			})

			Describe("with group-in-group memberships", func() {
				BeforeEach(func() {
					for sub, groups := range GroupInGroups {
						for _, group := range groups {
							Expect(m.Join(sub, group)).To(Succeed())
						}
					}
				})

				DescribeTable("querying direct subjects of group",
					func(group Group, subjects []interface{}) {
						Expect(m.ImmediateMembersOf(group)).To(haveExactKeys(subjects...))
					},
					Entry("epersons of group 3_0", Group("3_0"), []interface{}{EPerson("0"), EPerson("3"), EPerson("6"), EPerson("9")}),
					Entry("sub groups of divisible", Group("divisible"), []interface{}{Group("2_0"), Group("3_0"), Group("5_0")}),
				)

				DescribeTable("querying direct groups of subject",
					func(sub Subject, groups []interface{}) {
						Expect(m.ImmediateGroupsOf(sub)).To(haveExactKeys(groups...))
					},
					Entry("groups of eperson 9", EPerson("9"), []interface{}{Group("2_1"), Group("3_0"), Group("5_4")}),
					Entry("groups of group 2_0", Group("2_0"), []interface{}{Group("even"), Group("divisible")}),
				)

				DescribeTable("querying members of super group",
					func(group Group, persons []interface{}) {
						Expect(m.MembersOf(group)).To(haveExactKeys(persons...))
					},
					Entry("even numbers", Group("even"), []interface{}{EPerson("0"), EPerson("2"), EPerson("4"), EPerson("6"), EPerson("8")}),
					Entry("divisible numbers", Group("divisible"),
						[]interface{}{EPerson("0"), EPerson("2"), EPerson("3"), EPerson("4"), EPerson("5"), EPerson("6"), EPerson("8"), EPerson("9")},
					),
				)

				DescribeTable("querying groups of eperson",
					func(person EPerson, groups []interface{}) {
						Expect(m.GroupsOf(person)).To(haveExactKeys(groups...))
					},
					Entry("groups of eperson 1", EPerson("1"), []interface{}{Group("2_1"), Group("3_1"), Group("5_1")}),
					Entry("groups of eperson 4", EPerson("4"), []interface{}{Group("2_0"), Group("3_1"), Group("5_4"), Group("even"), Group("divisible")}),
					Entry("groups of eperson 9", EPerson("9"), []interface{}{Group("2_1"), Group("3_0"), Group("5_4"), Group("divisible")}),
				)

				DescribeTable("rejecting cycles at edit time",
					func(sub Group, group Group) {
						Expect(m.Join(sub, group)).To(MatchError(ErrCycle))
					},
					Entry("a group may not join itself", Group("even"), Group("even")),
					Entry("direct cycle", Group("even"), Group("2_0")),
					Entry("transitive cycle", Group("divisible"), Group("5_0")),
				)

				It("leaves the graph untouched after a rejected edge", func() {
					Expect(m.Join(Group("divisible"), Group("2_0"))).To(MatchError(ErrCycle))
					Expect(m.IsMember(Group("divisible"), Group("2_0"))).To(BeFalse())
					Expect(m.GroupsOf(Group("2_0"))).To(haveExactKeys(Group("even"), Group("divisible")))
				})
			})
		})
	}
})
