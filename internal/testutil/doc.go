// Package testutil provides test fixtures for the accounts service: an App
// with a pushed request context, a database with a fresh schema, an HTTP
// client bound to the App and two seeded users.
//
// Fixtures register their teardown with t.Cleanup, so it runs in reverse
// order of creation even when the test fails or panics:
//
//	func TestSomething(t *testing.T) {
//		a := testutil.NewApp(t)
//		db := testutil.NewDB(t, a)
//		admin := testutil.NewAdmin(t, db)
//		client := testutil.NewClient(t, a)
//		...
//	}
//
// NewApp skips the test when TEST_DATABASE_URL or TEST_REDIS_ADDR is unset.
package testutil
