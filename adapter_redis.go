package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// redisListKeys returns all keys matching the glob pattern.
func redisListKeys(ctx context.Context, c *redis.Client, pattern string) ([]string, error) {
	return c.Keys(ctx, pattern).Result()
}

// redisGetValue reads a key in a type-aware way: the key's native type tag
// decides the read command and the rendering. Strings come back raw; lists,
// sets and sorted sets come back as a JSON array of member strings; hashes
// as a JSON object. Exotic types (streams, bitmaps, ...) produce a
// placeholder instead of an error so the caller can still render something.
func redisGetValue(ctx context.Context, c *redis.Client, key string) (string, error) {
	keyType, err := c.Type(ctx, key).Result()
	if err != nil {
		return "", err
	}

	switch keyType {
	case "string":
		return c.Get(ctx, key).Result()
	case "list":
		members, err := c.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return "", err
		}
		return jsonString(members)
	case "set":
		members, err := c.SMembers(ctx, key).Result()
		if err != nil {
			return "", err
		}
		return jsonString(members)
	case "zset":
		members, err := c.ZRange(ctx, key, 0, -1).Result()
		if err != nil {
			return "", err
		}
		return jsonString(members)
	case "hash":
		fields, err := c.HGetAll(ctx, key).Result()
		if err != nil {
			return "", err
		}
		return jsonString(fields)
	default:
		return fmt.Sprintf("Unsupported type: %s", keyType), nil
	}
}

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func redisSetString(ctx context.Context, c *redis.Client, key, value string) error {
	return c.Set(ctx, key, value, 0).Err()
}

func redisDeleteKey(ctx context.Context, c *redis.Client, key string) error {
	return c.Del(ctx, key).Err()
}

func redisRenameKey(ctx context.Context, c *redis.Client, oldKey, newKey string) error {
	return c.Rename(ctx, oldKey, newKey).Err()
}

// redisTTL returns the key's remaining time to live in seconds (-1 when the
// key has no expiry, -2 when it does not exist), straight off the wire.
func redisTTL(ctx context.Context, c *redis.Client, key string) (int64, error) {
	return c.Do(ctx, "TTL", key).Int64()
}

// redisExecuteRaw splits a command line on whitespace and executes it as-is.
// No quoting support: arguments containing spaces cannot be expressed.
func redisExecuteRaw(ctx context.Context, c *redis.Client, commandLine string) (string, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}

	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}

	reply, err := c.Do(ctx, args...).Result()
	if errors.Is(err, redis.Nil) {
		return "(nil)", nil
	}
	if err != nil {
		return "", err
	}
	return formatRedisReply(reply), nil
}

// formatRedisReply renders a protocol reply as human-readable text,
// recursing into array replies.
func formatRedisReply(reply any) string {
	switch x := reply.(type) {
	case nil:
		return "(nil)"
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	case []byte:
		return lossyUTF8(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatRedisReply(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", x)
	}
}
