// Package harness runs validation scenarios written in YAML.
//
// A scenario is a list of cases. Each case names an entity, an operation
// and an input, and states the expected outcome: the input is accepted, or
// it is rejected with a given error kind at a given path. Accepted reads and
// deletes can additionally be checked against rows seeded into a throwaway
// SQLite store.
//
// # Scenario Format
//
//	name: bookmarks
//	description: "Bookmark filters and unique lookups"
//	setup:
//	  - entity: User
//	    data: { id: u1, email: a@example.com }
//	  - entity: Bookmark
//	    data: { id: b1, url: "https://go.dev", title: Go, userId: u1 }
//	cases:
//	  - name: filter by owner
//	    entity: Bookmark
//	    op: findMany
//	    input: { where: { user: { is: { email: a@example.com } } } }
//	    expect:
//	      ok: true
//	      ids: [b1]
//	  - name: unknown operator
//	    entity: Bookmark
//	    op: findMany
//	    input: { where: { url: { like: "%go%" } } }
//	    expect:
//	      error: SHAPE_MISMATCH
//	      path: where.url.like
//
// # Expectations
//
//   - ok: the input validates
//   - error, path, message: the input is rejected with this kind, at this
//     path, with a message containing the given text
//   - ids: findMany/findFirst/create return rows with these ids, in order
//   - count: count returns, or deleteMany removes, this many rows
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory database with a
// deterministic clock (testutil.DeterministicClock) and sequential ids
// (testutil.SequentialIDs), so outcomes are identical across runs and can
// be compared against golden snapshots.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/bookmarks.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.New(reg).Run(ctx, scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
