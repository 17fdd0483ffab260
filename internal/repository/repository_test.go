package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"natgpt/internal/config"
	"natgpt/internal/model/conversation"
	"natgpt/internal/pkg/cache"
)

// fakeCache is an in-process cache.Cache.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = b
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	b, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func newConversation(title string, contents ...string) *conversation.Conversation {
	c, err := conversation.New(title)
	if err != nil {
		panic(err)
	}
	for i, text := range contents {
		var m conversation.Message
		if i%2 == 0 {
			m, err = conversation.NewUserMessage(text)
		} else {
			m, err = conversation.NewAssistantMessage(text)
		}
		if err != nil {
			panic(err)
		}
		c = c.AddMessage(m)
	}
	return c
}

// exerciseContract runs the ConversationRepository contract against repo.
func exerciseContract(repo ConversationRepository) {
	ctx := context.Background()

	Convey("an empty repository", func() {
		all, err := repo.FindAll(ctx)
		So(err, ShouldBeNil)
		So(all, ShouldBeEmpty)

		missing, _ := conversation.NewConversationID("missing")
		c, err := repo.FindByID(ctx, missing)
		So(err, ShouldBeNil)
		So(c, ShouldBeNil)

		ok, err := repo.Exists(ctx, missing)
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)

		So(repo.Delete(ctx, missing), ShouldBeNil)
	})

	Convey("save then read back", func() {
		c := newConversation("First", "hello", "hi there").WithOwner("u1")
		So(repo.Save(ctx, c), ShouldBeNil)

		got, err := repo.FindByID(ctx, c.ID())
		So(err, ShouldBeNil)
		So(got, ShouldNotBeNil)
		So(got.Title(), ShouldEqual, "First")
		So(got.OwnerID(), ShouldEqual, "u1")
		So(got.MessageCount(), ShouldEqual, 2)
		So(got.Messages()[0].Content(), ShouldEqual, "hello")
		So(got.Messages()[0].Role(), ShouldEqual, conversation.RoleUser)
		So(got.Messages()[1].Content(), ShouldEqual, "hi there")
		So(got.UpdatedAt().Equal(c.UpdatedAt()), ShouldBeTrue)

		ok, err := repo.Exists(ctx, c.ID())
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)

		Convey("save is an upsert", func() {
			m, _ := conversation.NewUserMessage("third")
			updated := got.AddMessage(m)
			So(repo.Save(ctx, updated), ShouldBeNil)

			all, err := repo.FindAll(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 1)
			So(all[0].MessageCount(), ShouldEqual, 3)
			So(all[0].Messages()[2].Content(), ShouldEqual, "third")
		})

		Convey("delete removes and is idempotent", func() {
			So(repo.Delete(ctx, c.ID()), ShouldBeNil)
			So(repo.Delete(ctx, c.ID()), ShouldBeNil)

			ok, err := repo.Exists(ctx, c.ID())
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			got, err := repo.FindByID(ctx, c.ID())
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})
	})

	Convey("several conversations are kept apart", func() {
		a := newConversation("A", "a1")
		b := newConversation("B", "b1", "b2")
		So(repo.Save(ctx, a), ShouldBeNil)
		So(repo.Save(ctx, b), ShouldBeNil)

		all, err := repo.FindAll(ctx)
		So(err, ShouldBeNil)
		So(all, ShouldHaveLength, 2)

		counts := map[string]int{}
		for _, c := range all {
			counts[c.Title()] = c.MessageCount()
		}
		So(counts["A"], ShouldEqual, 1)
		So(counts["B"], ShouldEqual, 2)
	})
}

func TestMemoryRepo(t *testing.T) {
	Convey("MemoryRepo satisfies the repository contract", t, func() {
		exerciseContract(NewMemoryRepo())
	})
}

func TestFileRepo(t *testing.T) {
	Convey("FileRepo satisfies the repository contract", t, func() {
		repo, err := NewFileRepo(t.TempDir(), "")
		So(err, ShouldBeNil)
		So(filepath.Base(repo.Path()), ShouldEqual, DefaultFileKey+".json")
		exerciseContract(repo)
	})

	Convey("FileRepo storage format", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		repo, err := NewFileRepo(dir, "convs")
		So(err, ShouldBeNil)

		Convey("is a JSON array with ISO timestamps", func() {
			So(repo.Save(ctx, newConversation("Stored", "x")), ShouldBeNil)
			data, err := os.ReadFile(repo.Path())
			So(err, ShouldBeNil)

			var raw []map[string]any
			So(json.Unmarshal(data, &raw), ShouldBeNil)
			So(raw, ShouldHaveLength, 1)
			So(raw[0]["title"], ShouldEqual, "Stored")
			_, err = time.Parse(time.RFC3339Nano, raw[0]["updatedAt"].(string))
			So(err, ShouldBeNil)
		})

		Convey("corrupted JSON reads as empty and clears the file", func() {
			So(os.WriteFile(repo.Path(), []byte("{not json"), 0o644), ShouldBeNil)
			all, err := repo.FindAll(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldBeEmpty)
			_, statErr := os.Stat(repo.Path())
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})

		Convey("an unknown role fails deserialization", func() {
			blob := `[{"id":"c1","title":"t","messages":[{"id":"m1","content":"x","role":"system","timestamp":"2024-01-01T00:00:00Z"}],"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`
			So(os.WriteFile(repo.Path(), []byte(blob), 0o644), ShouldBeNil)
			_, err := repo.FindAll(ctx)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSQLiteRepo(t *testing.T) {
	Convey("SQLiteRepo satisfies the repository contract", t, func() {
		repo, err := NewSQLiteRepo(":memory:")
		So(err, ShouldBeNil)
		Reset(func() { repo.Close() })
		exerciseContract(repo)
	})
}

func TestCachedRepo(t *testing.T) {
	Convey("CachedRepo satisfies the repository contract", t, func() {
		exerciseContract(NewCachedRepo(NewMemoryRepo(), newFakeCache(), time.Minute))
	})

	Convey("CachedRepo reads through and invalidates on write", t, func() {
		ctx := context.Background()
		fc := newFakeCache()
		repo := NewCachedRepo(NewMemoryRepo(), fc, time.Minute)

		c := newConversation("cached", "one")
		So(repo.Save(ctx, c), ShouldBeNil)

		_, err := repo.FindByID(ctx, c.ID())
		So(err, ShouldBeNil)
		So(fc.data, ShouldContainKey, cache.ConversationCacheKey(c.ID().String()))

		m, _ := conversation.NewAssistantMessage("two")
		So(repo.Save(ctx, c.AddMessage(m)), ShouldBeNil)
		So(fc.data, ShouldNotContainKey, cache.ConversationCacheKey(c.ID().String()))

		got, err := repo.FindByID(ctx, c.ID())
		So(err, ShouldBeNil)
		So(got.MessageCount(), ShouldEqual, 2)
	})
}

func TestNew(t *testing.T) {
	Convey("New picks the adapter by driver", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		Convey("memory", func() {
			repo, cleanup, err := New(ctx, &config.PersistenceConfig{Driver: "memory"}, Backends{})
			So(err, ShouldBeNil)
			So(cleanup(), ShouldBeNil)
			_, ok := repo.(*MemoryRepo)
			So(ok, ShouldBeTrue)
		})

		Convey("file", func() {
			repo, _, err := New(ctx, &config.PersistenceConfig{Driver: "file", DataDir: dir, FileKey: "convs"}, Backends{})
			So(err, ShouldBeNil)
			_, ok := repo.(*FileRepo)
			So(ok, ShouldBeTrue)
		})

		Convey("sqlite in a nested directory", func() {
			repo, cleanup, err := New(ctx, &config.PersistenceConfig{Driver: "sqlite", SQLite: filepath.Join(dir, "db", "natgpt.db")}, Backends{})
			So(err, ShouldBeNil)
			Reset(func() { cleanup() })
			_, ok := repo.(*SQLiteRepo)
			So(ok, ShouldBeTrue)
		})

		Convey("mongo without a connection fails", func() {
			_, _, err := New(ctx, &config.PersistenceConfig{Driver: "mongo"}, Backends{})
			So(err, ShouldNotBeNil)
		})

		Convey("unknown drivers fail", func() {
			_, _, err := New(ctx, &config.PersistenceConfig{Driver: "cassandra"}, Backends{})
			So(err, ShouldNotBeNil)
		})

		Convey("cache wraps the adapter when a backend exists", func() {
			repo, _, err := New(ctx, &config.PersistenceConfig{Driver: "memory", Cache: true}, Backends{Cache: newFakeCache()})
			So(err, ShouldBeNil)
			cached, ok := repo.(*CachedRepo)
			So(ok, ShouldBeTrue)
			_, ok = cached.Inner().(*MemoryRepo)
			So(ok, ShouldBeTrue)
		})

		Convey("cache is skipped without a backend", func() {
			repo, _, err := New(ctx, &config.PersistenceConfig{Driver: "memory", Cache: true}, Backends{})
			So(err, ShouldBeNil)
			_, ok := repo.(*MemoryRepo)
			So(ok, ShouldBeTrue)
		})
	})
}
