package checkers_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/inicheck/internal/logging"
	"github.com/aretw0/inicheck/pkg/adapters/memory"
	"github.com/aretw0/inicheck/pkg/checkers"
	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/aretw0/inicheck/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

// testMaster mirrors the reference master configuration.
func testMaster() *schema.Master {
	return schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "username", Type: schema.TypeString},
		schema.Entry{Section: "basic", Item: "debug", Type: schema.TypeBool},
		schema.Entry{Section: "basic", Item: "time_out", Type: schema.TypeFloat},
		schema.Entry{Section: "basic", Item: "num_users", Type: schema.TypeInt},
		schema.Entry{Section: "basic", Item: "fraction", Type: schema.TypeFloat, Min: ptr(0), Max: ptr(1)},
		schema.Entry{Section: "basic", Item: "start_date", Type: schema.TypeDatetimeOrderedPair},
		schema.Entry{Section: "basic", Item: "end_date", Type: schema.TypeDatetimeOrderedPair},
		schema.Entry{Section: "basic", Item: "epochs", Type: schema.TypeDatetime, List: true},
		schema.Entry{Section: "basic", Item: "tmp", Type: schema.TypeDirectory},
		schema.Entry{Section: "basic", Item: "log", Type: schema.TypeFilename},
		schema.Entry{Section: "basic", Item: "favorite_web_site", Type: schema.TypeURL},
		schema.Entry{Section: "basic", Item: "when", Type: schema.TypeDatetime},
	)
}

func newStore(dir, section string, items ...ports.Item) *memory.Store {
	return memory.NewStore(dir, ports.Section{Name: section, Items: items})
}

// runChecker checks every value of valids and invalids as the raw value of
// basic.<item>, with extra seeded next to it.
func runChecker(t *testing.T, master *schema.Master, dir, item string, valids, invalids []any, extra ...ports.Item) {
	t.Helper()
	ctx := context.Background()

	for i, values := range [][]any{valids, invalids} {
		wantValid := i == 0
		for _, v := range values {
			store := newStore(dir, "basic", append([]ports.Item{{Name: item, Value: v}}, extra...)...)
			chk, err := checkers.New(store, master, "basic", item, checkers.WithLogger(logging.NewNop()))
			require.NoError(t, err)

			res, err := chk.Check(ctx)
			require.NoError(t, err)
			assert.Equal(t, wantValid, res.Valid(), "%s = %#v: %v", item, v, res.Err())
		}
	}
}

func castItem(t *testing.T, store ports.ConfigStore, master *schema.Master, item string, opts ...checkers.Option) any {
	t.Helper()
	chk, err := checkers.New(store, master, "basic", item, append(opts, checkers.WithLogger(logging.NewNop()))...)
	require.NoError(t, err)
	v, err := chk.Cast(context.Background())
	require.NoError(t, err)
	return v
}

func TestString(t *testing.T) {
	master := testMaster()
	runChecker(t, master, "", "username", []any{"test", "", 42}, nil)

	store := newStore("", "basic", ports.Item{Name: "username", Value: "Test"})
	assert.Equal(t, "test", castItem(t, store, master, "username"))

	// A single value cast in list mode comes back as a one-element list.
	assert.Equal(t, []any{"test"}, castItem(t, store, master, "username", checkers.WithListMode(true)))

	v := castItem(t, store, master, "username", checkers.WithListMode(false))
	assert.IsType(t, "", v)

	empty := newStore("", "basic", ports.Item{Name: "username", Value: ""})
	assert.Nil(t, castItem(t, empty, master, "username"))
}

func TestBool(t *testing.T) {
	valids := []any{true, false, "true", "FALSE", "yes", "y", "no", "n", "Yes", " N "}
	invalids := []any{"Fasle", "treu", "", 1, "1"}
	runChecker(t, testMaster(), "", "debug", valids, invalids)

	store := newStore("", "basic", ports.Item{Name: "debug", Value: "YES"})
	assert.Equal(t, true, castItem(t, store, testMaster(), "debug"))
}

func TestFloat(t *testing.T) {
	runChecker(t, testMaster(), "", "time_out", []any{-1.5, "2.5", 3, float32(0.5)}, []any{"tough", "", "NaN", true})

	store := newStore("", "basic", ports.Item{Name: "time_out", Value: "2.5"})
	assert.Equal(t, 2.5, castItem(t, store, testMaster(), "time_out"))
}

func TestInt(t *testing.T) {
	valids := []any{10, "2", 1.0, int8(3), uint16(4), " 7 "}
	invalids := []any{"tough", "1.5", "", "1.0", 1.5, true, 1e20, -1e20, 9.3e18}
	runChecker(t, testMaster(), "", "num_users", valids, invalids)

	tests := []struct {
		raw  any
		want int64
	}{
		{"2", 2},
		{1.0, 1},
		{int32(-4), -4},
	}
	for _, tt := range tests {
		store := newStore("", "basic", ports.Item{Name: "num_users", Value: tt.raw})
		assert.Equal(t, tt.want, castItem(t, store, testMaster(), "num_users"), "raw %#v", tt.raw)
	}
}

func TestIntDefault(t *testing.T) {
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "num_users", Type: schema.TypeInt, Default: 5},
	)
	runChecker(t, master, "", "num_users", []any{"", "2"}, []any{"1.5"})

	store := newStore("", "basic", ports.Item{Name: "num_users", Value: ""})
	assert.Equal(t, int64(5), castItem(t, store, master, "num_users"))
}

func TestDatetime(t *testing.T) {
	valids := []any{
		"2018-01-10 10:10", "10-10-2018", "October 10 2018", "2018-10-10T10:10:10Z",
		"1-01-2019", "2019/10/01", "Oct 10, 2018", "10 october 2018",
		time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	invalids := []any{"Not-a-date", "Wednesday 5th", "", 20181010, "13-45-2018"}
	runChecker(t, testMaster(), "", "when", valids, invalids)

	store := newStore("", "basic", ports.Item{Name: "when", Value: "10-11-2018"})
	assert.Equal(t, time.Date(2018, 10, 11, 0, 0, 0, 0, time.UTC), castItem(t, store, testMaster(), "when"))
}

func TestList(t *testing.T) {
	valids := []any{"10-10-2019", []any{"10-10-2019"}, []any{"10-10-2019", "11-10-2019"}, []string{"10-10-2019"}}
	runChecker(t, testMaster(), "", "epochs", valids, []any{[]any{"10-10-2019", "bogus"}})

	store := newStore("", "basic", ports.Item{Name: "epochs", Value: []any{"10-10-2019", "bogus", "nope"}})
	chk, err := checkers.New(store, testMaster(), "basic", "epochs")
	require.NoError(t, err)
	res, err := chk.Check(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Issues, 3, "one entry per scalar")
	assert.Nil(t, res.Issues[0])
	assert.Error(t, res.Issues[1])
	assert.Error(t, res.Issues[2])
	assert.Equal(t, "", res.Messages()[0])
	assert.Contains(t, res.Messages()[1], `"bogus"`)
	assert.Nil(t, res.Update)
}

func TestScalarItemRejectsList(t *testing.T) {
	store := newStore("", "basic", ports.Item{Name: "num_users", Value: []any{"1", "2"}})
	chk, err := checkers.New(store, testMaster(), "basic", "num_users")
	require.NoError(t, err)

	res, err := chk.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, res.IssueList(), 1)
	assert.Equal(t, checkers.KindStructure, res.IssueList()[0].Kind)

	_, err = chk.Cast(context.Background())
	var iss *checkers.Issue
	require.ErrorAs(t, err, &iss)
	assert.Equal(t, checkers.KindStructure, iss.Kind)
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	runChecker(t, testMaster(), dir, "tmp", []any{"./", dir}, []any{"./somecrazy_location!/", "bad<dir>", 42})

	store := newStore(dir, "basic", ports.Item{Name: "tmp", Value: ""})
	v := castItem(t, store, testMaster(), "tmp")
	assert.Equal(t, "temp", filepath.Base(v.(string)))
	assert.Equal(t, dir, filepath.Dir(v.(string)))

	store = newStore(dir, "basic", ports.Item{Name: "tmp", Value: "./"})
	assert.Equal(t, filepath.Clean(dir), castItem(t, store, testMaster(), "tmp"))
}

func TestFilename(t *testing.T) {
	root := t.TempDir()
	cfgDir := filepath.Join(root, "test_configs")
	require.NoError(t, os.Mkdir(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "test_checkers.py"), []byte("#"), 0o644))

	// Paths are relative to the configuration's directory.
	runChecker(t, testMaster(), cfgDir, "log", []any{"../test_checkers.py"}, []any{"dumbfilename", "..", "a|b"})

	store := newStore(cfgDir, "basic", ports.Item{Name: "log", Value: ""})
	assert.Nil(t, castItem(t, store, testMaster(), "log"))

	withDefault := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "log", Type: schema.TypeFilename, Default: "log.txt"},
	)
	v := castItem(t, store, withDefault, "log")
	assert.Equal(t, filepath.Join(cfgDir, "log.txt"), v, "defaults are resolved but need not exist")
}

func TestCriticalPaths(t *testing.T) {
	dir := t.TempDir()
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "out", Type: schema.TypeCriticalDirectory},
		schema.Entry{Section: "basic", Item: "topo", Type: schema.TypeCriticalFilename},
		schema.Entry{Section: "basic", Item: "cache", Type: schema.TypeCriticalDirectory, Default: "cache"},
	)

	for _, item := range []string{"out", "topo"} {
		store := newStore(dir, "basic", ports.Item{Name: item, Value: ""})
		chk, err := checkers.New(store, master, "basic", item)
		require.NoError(t, err)
		res, err := chk.Check(context.Background())
		require.NoError(t, err)
		require.Len(t, res.IssueList(), 1, item)
		assert.Equal(t, checkers.KindMissing, res.IssueList()[0].Kind)
	}

	store := newStore(dir, "basic", ports.Item{Name: "cache", Value: ""})
	assert.Equal(t, filepath.Join(dir, "cache"), castItem(t, store, master, "cache"))
}

func TestURL(t *testing.T) {
	valids := []any{"https://google.com", "http://localhost:8080/path", "http://127.0.0.1", "ftp://example.org/a?b=c"}
	invalids := []any{
		"https://micah_subnaught_is_awesome.com",
		"google.com",
		"https://",
		"not a url",
		"",
		42,
	}
	runChecker(t, testMaster(), "", "favorite_web_site", valids, invalids)

	store := newStore("", "basic", ports.Item{Name: "favorite_web_site", Value: "https://Example.com/Path"})
	assert.Equal(t, "https://Example.com/Path", castItem(t, store, testMaster(), "favorite_web_site"))
}

func TestDatetimeOrderedPairs(t *testing.T) {
	starts := []string{"1-01-2019", "2019-10-01", "1998-01-14 15:00:00"}
	ends := []string{"1-02-2019", "2019-10-02", "1998-01-14 19:00:00"}
	invalidStarts := []string{"01-01-2020", "2020-06-01", "1998-01-14 20:00:00"}
	invalidEnds := []string{"01-01-2018", "2018-10-01", "1998-01-14 10:00:00"}

	master := testMaster()
	for i := range starts {
		runChecker(t, master, "", "start_date",
			[]any{starts[i]}, []any{invalidStarts[i]},
			ports.Item{Name: "end_date", Value: ends[i]})

		runChecker(t, master, "", "end_date",
			[]any{ends[i]}, []any{invalidEnds[i]},
			ports.Item{Name: "start_date", Value: starts[i]})
	}

	// Equal endpoints fail in both directions.
	runChecker(t, master, "", "end_date", []any{"2020-10-02"}, []any{"2020-10-01"},
		ports.Item{Name: "start_date", Value: "2020-10-01"})
	runChecker(t, master, "", "start_date", []any{"2020-09-30"}, []any{"2020-10-01"},
		ports.Item{Name: "end_date", Value: "2020-10-01"})
}

func TestDatetimeOrderedPairSkips(t *testing.T) {
	master := testMaster()
	ctx := context.Background()

	tests := []struct {
		name  string
		extra []ports.Item
	}{
		{"partner absent", nil},
		{"partner empty", []ports.Item{{Name: "end_date", Value: ""}}},
		{"partner unparsable", []ports.Item{{Name: "end_date", Value: "whenever"}}},
		{"partner holds several values", []ports.Item{{Name: "end_date", Value: []any{"2000-01-01", "2001-01-01"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := append([]ports.Item{{Name: "start_date", Value: "2020-01-01"}}, tt.extra...)
			store := newStore("", "basic", items...)
			chk, err := checkers.New(store, master, "basic", "start_date")
			require.NoError(t, err)

			res, err := chk.Check(ctx)
			require.NoError(t, err)
			assert.True(t, res.Valid(), res.Err())
		})
	}

	// A one-element list partner is unwrapped.
	store := newStore("", "basic",
		ports.Item{Name: "start_date", Value: "2020-01-01"},
		ports.Item{Name: "end_date", Value: []any{"2019-01-01"}},
	)
	chk, err := checkers.New(store, master, "basic", "start_date")
	require.NoError(t, err)
	res, err := chk.Check(ctx)
	require.NoError(t, err)
	require.Len(t, res.IssueList(), 1)
	assert.Equal(t, checkers.KindRelation, res.IssueList()[0].Kind)
	assert.Nil(t, res.Update)

	// An invalid own value short-circuits with a parse issue.
	store = newStore("", "basic",
		ports.Item{Name: "start_date", Value: "garbage"},
		ports.Item{Name: "end_date", Value: "2019-01-01"},
	)
	chk, err = checkers.New(store, master, "basic", "start_date")
	require.NoError(t, err)
	res, err = chk.Check(ctx)
	require.NoError(t, err)
	require.Len(t, res.IssueList(), 1)
	assert.Equal(t, checkers.KindParse, res.IssueList()[0].Kind)
}

func TestExplicitPair(t *testing.T) {
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "window", Item: "opens", Type: schema.TypeDatetimeOrderedPair, Pair: "closes", Role: schema.RoleStart},
		schema.Entry{Section: "window", Item: "closes", Type: schema.TypeDatetimeOrderedPair, Pair: "opens", Role: schema.RoleEnd},
	)
	store := memory.NewStore("", ports.Section{Name: "window", Items: []ports.Item{
		{Name: "opens", Value: "2020-05-01"},
		{Name: "closes", Value: "2020-04-01"},
	}})

	for _, item := range []string{"opens", "closes"} {
		chk, err := checkers.New(store, master, "window", item)
		require.NoError(t, err)
		res, err := chk.Check(context.Background())
		require.NoError(t, err)
		assert.False(t, res.Valid(), item)
	}
}

func TestBounds(t *testing.T) {
	runChecker(t, testMaster(), "", "fraction", []any{1.0, 0.0, "0.5", 1}, []any{1.1, -1.0, "10"})

	store := newStore("", "basic", ports.Item{Name: "fraction", Value: "10"})
	chk, err := checkers.New(store, testMaster(), "basic", "fraction")
	require.NoError(t, err)
	res, err := chk.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, res.IssueList(), 1)
	assert.Equal(t, checkers.KindBounds, res.IssueList()[0].Kind)
	assert.Contains(t, res.IssueList()[0].Reason, "between 0 and 1")
}

func TestOneSidedBounds(t *testing.T) {
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "workers", Type: schema.TypeInt, Min: ptr(1)},
	)
	runChecker(t, master, "", "workers", []any{1, "100"}, []any{0, "-3"})
}

func TestOptions(t *testing.T) {
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "mode", Type: schema.TypeString, Options: []any{"fast", "slow"}},
		schema.Entry{Section: "basic", Item: "level", Type: schema.TypeInt, Options: []any{1, 2, 3}},
	)
	runChecker(t, master, "", "mode", []any{"fast", "SLOW", " Fast "}, []any{"medium"})
	runChecker(t, master, "", "level", []any{1, "2", 3.0}, []any{4, "0"})

	store := newStore("", "basic", ports.Item{Name: "mode", Value: "medium"})
	chk, err := checkers.New(store, master, "basic", "mode")
	require.NoError(t, err)
	res, err := chk.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, res.IssueList(), 1)
	assert.Equal(t, checkers.KindOption, res.IssueList()[0].Kind)
}

func TestInvalidDefaultIsReported(t *testing.T) {
	master := schema.NewMaster().MustAdd(
		schema.Entry{Section: "basic", Item: "num_users", Type: schema.TypeInt, Default: "many"},
	)
	store := newStore("", "basic", ports.Item{Name: "num_users", Value: ""})
	chk, err := checkers.New(store, master, "basic", "num_users")
	require.NoError(t, err)

	res, err := chk.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, res.IssueList(), 1)
	assert.Contains(t, res.IssueList()[0].Reason, "default")
}

func TestUnknownItem(t *testing.T) {
	store := newStore("", "basic")
	_, err := checkers.New(store, testMaster(), "basic", "nope")
	assert.ErrorIs(t, err, schema.ErrUnknownItem)
}

func TestCheckReturnsUpdateWithoutWriting(t *testing.T) {
	ctx := context.Background()
	master := testMaster()
	store := newStore("", "basic",
		ports.Item{Name: "username", Value: "Alice"},
		ports.Item{Name: "epochs", Value: "10-10-2019"},
	)

	chk, err := checkers.New(store, master, "basic", "username")
	require.NoError(t, err)
	res, err := chk.Check(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Update)
	assert.Equal(t, "alice", res.Update.Value)

	raw, _, _ := store.Get(ctx, "basic", "username")
	assert.Equal(t, "Alice", raw, "Check must not write")

	require.NoError(t, res.Update.Apply(ctx, store))
	raw, _, _ = store.Get(ctx, "basic", "username")
	assert.Equal(t, "alice", raw)

	// Re-checking the normalized value is stable.
	res, err = chk.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Update.Value)

	// List items are written back wrapped.
	chk, err = checkers.New(store, master, "basic", "epochs")
	require.NoError(t, err)
	res, err = chk.Check(ctx)
	require.NoError(t, err)
	require.NoError(t, res.Update.Apply(ctx, store))
	raw, _, _ = store.Get(ctx, "basic", "epochs")
	assert.Equal(t, []any{time.Date(2019, 10, 10, 0, 0, 0, 0, time.UTC)}, raw)
}

func TestAbsentItemHasNoUpdate(t *testing.T) {
	store := newStore("", "basic")
	chk, err := checkers.New(store, testMaster(), "basic", "username")
	require.NoError(t, err)

	res, err := chk.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Nil(t, res.Update)
	assert.Nil(t, (*checkers.Update)(nil).Apply(context.Background(), store))
}

func TestHooks(t *testing.T) {
	var events []*checkers.CheckEvent
	hooks := checkers.Hooks{OnCheck: func(_ context.Context, e *checkers.CheckEvent) {
		events = append(events, e)
	}}

	store := newStore("", "basic",
		ports.Item{Name: "num_users", Value: "1.5"},
		ports.Item{Name: "start_date", Value: "2020-01-01"},
	)
	for _, item := range []string{"num_users", "start_date"} {
		chk, err := checkers.New(store, testMaster(), "basic", item, checkers.WithHooks(hooks))
		require.NoError(t, err)
		_, err = chk.Check(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, events, 2)
	assert.Equal(t, "num_users", events[0].Result.Item)
	assert.False(t, events[0].Result.Valid())
	assert.Equal(t, schema.TypeDatetimeOrderedPair, events[1].Result.Type)
	assert.True(t, events[1].Result.Valid())
}

type failingStore struct{ *memory.Store }

var errBackend = errors.New("backend down")

func (failingStore) Get(context.Context, string, string) (any, bool, error) {
	return nil, false, errBackend
}

func TestStoreErrorsSurface(t *testing.T) {
	store := failingStore{newStore("", "basic")}
	chk, err := checkers.New(store, testMaster(), "basic", "start_date")
	require.NoError(t, err)

	_, err = chk.Check(context.Background())
	assert.ErrorIs(t, err, errBackend)

	_, err = chk.Cast(context.Background())
	assert.ErrorIs(t, err, errBackend)
}

func TestCheckerType(t *testing.T) {
	store := newStore("", "basic")
	master := testMaster()
	for _, e := range master.Entries() {
		chk, err := checkers.New(store, master, e.Section, e.Item)
		require.NoError(t, err)
		assert.Equal(t, e.Type, chk.Type())
	}
}
