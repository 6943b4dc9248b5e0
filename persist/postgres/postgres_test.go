package postgres

import (
	"context"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/openarchive/authz/persist/test"
)

func TestPersisters(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "postgres persisters")
}

var store *Store

var _ = BeforeSuite(func() {
	dsn := os.Getenv("AUTHZ_TEST_POSTGRES")
	if dsn == "" {
		Skip("set AUTHZ_TEST_POSTGRES to a database url to run postgres persister cases")
	}

	ctx := context.Background()
	var e error
	store, e = NewStore(ctx, dsn)
	Expect(e).To(Succeed())
	Expect(store.Migrate(ctx)).To(Succeed())

	_, e = store.Pool().Exec(ctx, "truncate authz.memberships, authz.policies")
	Expect(e).To(Succeed())

	TestMembershipPersister(NewMembershipPersister(ctx, store))
	TestPolicyPersister(NewPolicyPersister(ctx, store))
})

var _ = AfterSuite(func() {
	if store == nil {
		return
	}
	_, _ = store.Pool().Exec(context.Background(), "truncate authz.memberships, authz.policies")
	store.Close()
})

var _ = MembershipCases
var _ = PolicyCases
