package estatedash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	dbRedis "github.com/kailas-cloud/estatedash/internal/db/redis"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestOptions(t *testing.T) {
	cfg := &clientConfig{}
	for _, o := range []Option{
		WithRedis("redis:6379", "pw"),
		WithACLUser("dash"),
		WithKeyPrefix("test:"),
		WithCache(10, time.Minute),
		WithFetchWorkers(4, 2*time.Second),
		WithImageCapacity(3),
	} {
		o(cfg)
	}

	if len(cfg.addrs) != 1 || cfg.addrs[0] != "redis:6379" || cfg.password != "pw" || cfg.username != "dash" {
		t.Errorf("connection options not applied: %+v", cfg)
	}
	if cfg.keyPrefix != "test:" || cfg.cacheCapacity != 10 || cfg.cacheTTL != time.Minute {
		t.Errorf("cache options not applied: %+v", cfg)
	}
	if cfg.workers != 4 || cfg.fetchTimeout != 2*time.Second || cfg.imageCapacity != 3 {
		t.Errorf("fetch options not applied: %+v", cfg)
	}
}

func TestWireClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	c.EXPECT().Close()

	client := wireClient(dbRedis.NewStoreForTest(c), &clientConfig{})
	defer client.Close()

	stats := client.CacheStats()
	for _, col := range []string{"users", "submissions", "properties", "shortlist", "extraction"} {
		st, ok := stats[col]
		if !ok {
			t.Errorf("missing cache stats for %s", col)
			continue
		}
		if st.Hits != 0 || st.Misses != 0 {
			t.Errorf("%s: fresh cache has activity %+v", col, st)
		}
	}
}

func TestClient_Ping(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused")))

	client := wireClient(dbRedis.NewStoreForTest(c), &clientConfig{})
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}
