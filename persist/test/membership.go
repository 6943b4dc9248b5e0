// Package test holds persister cases shared by every backend. A backend
// test suite registers its persisters through the setters and includes
// the exported cases in its spec tree.
package test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openarchive/authz/types"
)

var mp types.MembershipPersister

// TestMembershipPersister registers the persister the shared membership
// cases run against. The persister must start empty.
func TestMembershipPersister(p types.MembershipPersister) {
	mp = p
}

var MembershipCases = Describe("membership persister", func() {
	insertEdges := []types.MembershipEdge{
		{Member: types.EPerson("alice"), Group: types.Group("librarians")},
		{Member: types.EPerson("bob"), Group: types.Group("librarians")},
		{Member: types.EPerson("carol"), Group: types.Group("curators")},
		{Member: types.Group("curators"), Group: types.Group("staff")},
		{Member: types.EPerson("dave"), Group: types.Group("staff")},
	}
	removeEdges := []types.MembershipEdge{
		{Member: types.EPerson("bob"), Group: types.Group("librarians")},
		{Member: types.EPerson("dave"), Group: types.Group("staff")},
	}

	changes := make([]types.MembershipChange, 0, len(insertEdges)+len(removeEdges))
	for _, edge := range insertEdges {
		changes = append(changes, types.MembershipChange{MembershipEdge: edge, Method: types.PersistInsert})
	}
	for _, edge := range removeEdges {
		changes = append(changes, types.MembershipChange{MembershipEdge: edge, Method: types.PersistDelete})
	}

	It("round-trips membership edges", func() {
		By("start watching membership changes")
		w, e := mp.Watch(context.Background())
		Expect(e).To(Succeed())

		go func() {
			defer GinkgoRecover()

			for _, edge := range insertEdges {
				By(fmt.Sprintf("insert %v", edge))
				Expect(mp.Insert(edge.Member, edge.Group)).To(Succeed())
			}

			By("removing an absent edge publishes nothing")
			Expect(mp.Remove(types.EPerson("mallory"), types.Group("staff"))).To(Succeed())

			for _, edge := range removeEdges {
				By(fmt.Sprintf("remove %v", edge))
				Expect(mp.Remove(edge.Member, edge.Group)).To(Succeed())
			}
		}()

		By("observe changes in sequence")
		for _, change := range changes {
			By(fmt.Sprintf("should observe %v", change))
			got, ok := <-w
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(change))
		}

		By("after that, should not observe any changes more")
		Consistently(w).ShouldNot(Receive())

		By("list all edges remained")
		Expect(mp.List()).To(ConsistOf(insertEdges[0], insertEdges[2], insertEdges[3]))
	})
})
