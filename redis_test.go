package main

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	s := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisGetValueTypeDispatch(t *testing.T) {
	ctx := context.Background()
	c := newTestRedis(t)

	if err := c.Set(ctx, "greeting", "hello", 0).Err(); err != nil {
		t.Fatalf("seed string: %v", err)
	}
	if err := c.RPush(ctx, "letters", "a", "b", "c").Err(); err != nil {
		t.Fatalf("seed list: %v", err)
	}
	if err := c.SAdd(ctx, "tags", "x", "y").Err(); err != nil {
		t.Fatalf("seed set: %v", err)
	}
	if err := c.ZAdd(ctx, "ranks",
		redis.Z{Score: 1, Member: "one"},
		redis.Z{Score: 2, Member: "two"}).Err(); err != nil {
		t.Fatalf("seed zset: %v", err)
	}
	if err := c.HSet(ctx, "user", "name", "alice", "role", "admin").Err(); err != nil {
		t.Fatalf("seed hash: %v", err)
	}

	t.Run("string returns raw value", func(t *testing.T) {
		got, err := redisGetValue(ctx, c, "greeting")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != "hello" {
			t.Errorf("Expected hello, got %q", got)
		}
	})

	t.Run("list returns ordered JSON array", func(t *testing.T) {
		got, err := redisGetValue(ctx, c, "letters")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != `["a","b","c"]` {
			t.Errorf("Unexpected list rendering: %q", got)
		}
	})

	t.Run("set returns JSON array of members", func(t *testing.T) {
		got, err := redisGetValue(ctx, c, "tags")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		var members []string
		if err := json.Unmarshal([]byte(got), &members); err != nil {
			t.Fatalf("not a JSON array: %q", got)
		}
		sort.Strings(members)
		if len(members) != 2 || members[0] != "x" || members[1] != "y" {
			t.Errorf("Expected [x y], got %v", members)
		}
	})

	t.Run("zset returns score-ordered JSON array", func(t *testing.T) {
		got, err := redisGetValue(ctx, c, "ranks")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != `["one","two"]` {
			t.Errorf("Unexpected zset rendering: %q", got)
		}
	})

	t.Run("hash returns JSON object", func(t *testing.T) {
		got, err := redisGetValue(ctx, c, "user")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		var fields map[string]string
		if err := json.Unmarshal([]byte(got), &fields); err != nil {
			t.Fatalf("not a JSON object: %q", got)
		}
		if len(fields) != 2 || fields["name"] != "alice" || fields["role"] != "admin" {
			t.Errorf("Unexpected hash fields: %v", fields)
		}
	})

	t.Run("missing key reports its type tag", func(t *testing.T) {
		got, err := redisGetValue(ctx, c, "absent")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != "Unsupported type: none" {
			t.Errorf("Expected placeholder, got %q", got)
		}
	})
}

func TestRedisGatewayLifecycle(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	g := NewGateway(0, 0, 0)
	t.Cleanup(g.Close)

	port, err := strconv.Atoi(s.Port())
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	if _, err := g.Connect(ctx, KindRedis, ConnectParams{Host: s.Host(), Port: port}, nil); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := g.RedisSetString(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := g.RedisGetValue(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get: expected v, got %q err %v", got, err)
	}

	ttl, err := g.RedisTTL(ctx, "k")
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl != -1 {
		t.Errorf("Expected -1 for a key without expiry, got %d", ttl)
	}

	if err := g.RedisRenameKey(ctx, "k", "k2"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	keys, err := g.RedisListKeys(ctx, "*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "k2" {
		t.Errorf("Expected [k2], got %v", keys)
	}

	reply, err := g.RedisExecuteRaw(ctx, "PING")
	if err != nil || reply != "PONG" {
		t.Errorf("raw PING: expected PONG, got %q err %v", reply, err)
	}

	if err := g.RedisDeleteKey(ctx, "k2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	missingTTL, err := g.RedisTTL(ctx, "k2")
	if err != nil {
		t.Fatalf("ttl after delete: %v", err)
	}
	if missingTTL != -2 {
		t.Errorf("Expected -2 for a missing key, got %d", missingTTL)
	}
}

func TestRedisOpsHonorQueryTimeout(t *testing.T) {
	s := miniredis.RunT(t)
	g := NewGateway(0, time.Nanosecond, 0)
	t.Cleanup(g.Close)

	port, err := strconv.Atoi(s.Port())
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	// Connect runs under its own timeout, not the query deadline.
	if _, err := g.Connect(context.Background(), KindRedis, ConnectParams{Host: s.Host(), Port: port}, nil); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := g.RedisListKeys(context.Background(), "*"); err == nil {
		t.Error("Expected a deadline error for the key listing")
	}
	if err := g.RedisSetString(context.Background(), "k", "v"); err == nil {
		t.Error("Expected a deadline error for the write")
	}
}

func TestFormatRedisReply(t *testing.T) {
	tests := []struct {
		name     string
		reply    any
		expected string
	}{
		{"nil reply", nil, "(nil)"},
		{"integer reply", int64(42), "42"},
		{"simple string", "OK", "OK"},
		{"bulk string bytes", []byte("value"), "value"},
		{"bool true", true, "1"},
		{"bool false", false, "0"},
		{"flat array", []any{"a", "b", "c"}, "[a, b, c]"},
		{"mixed array", []any{int64(1), "two", nil}, "[1, two, (nil)]"},
		{"nested array", []any{"a", []any{int64(1), int64(2)}}, "[a, [1, 2]]"},
		{"empty array", []any{}, "[]"},
		{"fallback", 3.14, "3.14"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatRedisReply(tc.reply); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRedisExecuteRawRejectsEmptyCommand(t *testing.T) {
	// The empty-command check fires before any client use.
	for _, line := range []string{"", "   ", "\t\n"} {
		if _, err := redisExecuteRaw(context.Background(), nil, line); err == nil {
			t.Errorf("Expected error for command line %q", line)
		}
	}
}
