package types_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/openarchive/authz/types"
)

var _ = Describe("date", func() {
	It("truncates instants to UTC days", func() {
		at := time.Date(2024, time.March, 1, 23, 59, 59, 0, time.UTC)
		Expect(DateOf(at)).To(Equal(NewDate(2024, time.March, 1)))
	})

	It("parses the wire format", func() {
		Expect(ParseDate("2024-02-29")).To(Equal(NewDate(2024, time.February, 29)))
	})

	It("rejects malformed dates", func() {
		_, err := ParseDate("29/02/2024")
		Expect(err).To(HaveOccurred())
	})

	It("steps over month boundaries", func() {
		Expect(NewDate(2024, time.January, 31).Next()).To(Equal(NewDate(2024, time.February, 1)))
	})

	It("orders dates", func() {
		Expect(NewDate(2024, time.March, 1).Before(NewDate(2024, time.March, 2))).To(BeTrue())
		Expect(NewDate(2024, time.March, 2).After(NewDate(2024, time.March, 1))).To(BeTrue())
	})
})

var _ = Describe("policy window", func() {
	date := func(y int, m time.Month, d int) *Date {
		nd := NewDate(y, m, d)
		return &nd
	}
	at := func(y int, m time.Month, d, hour int) time.Time {
		return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
	}

	DescribeTable("active",
		func(p Policy, now time.Time) {
			Expect(p.ActiveAt(now)).To(BeTrue())
		},
		Entry("no bounds", Policy{}, at(2024, time.March, 1, 12)),
		Entry("after open start",
			Policy{StartDate: date(2024, time.March, 1)}, at(2024, time.June, 1, 0)),
		Entry("on the start day",
			Policy{StartDate: date(2024, time.March, 1)}, at(2024, time.March, 1, 0)),
		Entry("on the end day, end is inclusive",
			Policy{EndDate: date(2024, time.March, 31)}, at(2024, time.March, 31, 23)),
		Entry("inside a closed window",
			Policy{StartDate: date(2024, time.March, 1), EndDate: date(2024, time.March, 31)},
			at(2024, time.March, 15, 12)),
	)

	DescribeTable("inactive",
		func(p Policy, now time.Time) {
			Expect(p.ActiveAt(now)).To(BeFalse())
		},
		Entry("before the start day",
			Policy{StartDate: date(2024, time.March, 1)}, at(2024, time.February, 29, 23)),
		Entry("the day after the end day",
			Policy{EndDate: date(2024, time.March, 31)}, at(2024, time.April, 1, 0)),
		Entry("embargo still closed",
			Policy{StartDate: date(2030, time.January, 1)}, at(2024, time.March, 1, 12)),
	)

	It("answers differently as time passes the embargo lift", func() {
		p := Policy{StartDate: date(2024, time.June, 1)}
		Expect(p.ActiveAt(at(2024, time.May, 31, 23))).To(BeFalse())
		Expect(p.ActiveAt(at(2024, time.June, 1, 0))).To(BeTrue())
	})
})
