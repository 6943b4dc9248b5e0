package test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/openarchive/authz/types"
)

var pp types.PolicyPersister

// TestPolicyPersister registers the persister the shared policy cases
// run against. The persister must start empty.
func TestPolicyPersister(p types.PolicyPersister) {
	pp = p
}

var PolicyCases = Describe("policy persister", func() {
	embargoLift := types.NewDate(2024, time.September, 1)
	windowEnd := types.NewDate(2026, time.June, 30)

	insertPolicies := []types.Policy{
		{
			ID:      "policy-read-thesis",
			Object:  types.Item("thesis"),
			Action:  types.Read,
			Subject: types.Group("campus"),
			Type:    types.TypeCustom,
			Name:    "campus read",
		},
		{
			ID:        "policy-embargo",
			Object:    types.Bitstream("thesis.pdf"),
			Action:    types.Read,
			Subject:   types.Group("anonymous"),
			StartDate: &embargoLift,
			EndDate:   &windowEnd,
			Type:      types.TypeInherited,
			Name:      "embargo window",
		},
		{
			ID:          "policy-deposit",
			Object:      types.Collection("theses"),
			Action:      types.Add | types.Write,
			Subject:     types.EPerson("editor"),
			Type:        types.TypeCustom,
			Description: "deposit rights for the theses editor",
		},
	}
	updatePolicies := []types.Policy{
		{
			ID:        "policy-embargo",
			Object:    types.Bitstream("thesis.pdf"),
			Action:    types.Read,
			Subject:   types.Group("anonymous"),
			StartDate: &embargoLift,
			Type:      types.TypeInherited,
			Name:      "embargo window",
		},
		{
			ID:      "policy-deposit",
			Object:  types.Collection("theses"),
			Action:  types.Add | types.Write,
			Subject: types.Group("editors"),
			Type:    types.TypeCustom,
		},
	}
	removeIDs := []string{"policy-read-thesis"}

	It("round-trips policy records", func() {
		By("start watching policy changes")
		w, e := pp.Watch(context.Background())
		Expect(e).To(Succeed())

		go func() {
			defer GinkgoRecover()

			for _, policy := range insertPolicies {
				By(fmt.Sprintf("insert %s", policy.ID))
				Expect(pp.Insert(policy)).To(Succeed())
			}
			for _, policy := range updatePolicies {
				By(fmt.Sprintf("update %s", policy.ID))
				Expect(pp.Update(policy)).To(Succeed())
			}

			By("removing an absent record publishes nothing")
			Expect(pp.Remove("policy-missing")).To(Succeed())

			for _, id := range removeIDs {
				By(fmt.Sprintf("remove %s", id))
				Expect(pp.Remove(id)).To(Succeed())
			}
		}()

		By("observe inserts and updates with full records")
		for _, policy := range insertPolicies {
			got, ok := <-w
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(types.PolicyChange{Policy: policy, Method: types.PersistInsert}))
		}
		for _, policy := range updatePolicies {
			got, ok := <-w
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(types.PolicyChange{Policy: policy, Method: types.PersistUpdate}))
		}

		By("observe deletes by id")
		for _, id := range removeIDs {
			got, ok := <-w
			Expect(ok).To(BeTrue())
			Expect(got.Method).To(Equal(types.PersistDelete))
			Expect(got.Policy.ID).To(Equal(id))
		}

		By("after that, should not observe any changes more")
		Consistently(w).ShouldNot(Receive())

		By("list all records remained")
		Expect(pp.List()).To(ConsistOf(updatePolicies[0], updatePolicies[1]))
	})
})
