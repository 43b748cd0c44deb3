package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/inicheck/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "inicheck:config:"

// setExisting writes a field only if the hash already holds it.
var setExisting = backend.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 1 then
	redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// Store implements ports.ConfigStore using Redis.
//
// Layout, under the key prefix:
//
//	index             ZSET of section names scored by declaration order
//	items:<section>   ZSET of item names scored by declaration order
//	section:<section> HASH of item name to JSON-encoded value
type Store struct {
	client *backend.Client
	prefix string
	dir    string
	ttl    time.Duration
}

type Option func(*Store)

// WithPrefix sets the key prefix (default "inicheck:config:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL sets an expiration on every key written by Seed.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a new Redis store with options. dir is the directory relative
// paths in the configuration resolve against.
func New(address, password string, db int, dir string, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, dir, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, dir string, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
		dir:    dir,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) indexKey() string { return s.prefix + "index" }

func (s *Store) itemsKey(section string) string { return s.prefix + "items:" + section }

func (s *Store) sectionKey(section string) string { return s.prefix + "section:" + section }

// Seed appends sections to the store. Sections and items already present
// keep their position; their values are overwritten.
func (s *Store) Seed(ctx context.Context, sections ...ports.Section) error {
	nextSection, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to read section index: %w", err)
	}

	nextItem := make(map[string]int64)
	for _, sec := range sections {
		if _, seen := nextItem[sec.Name]; seen {
			continue
		}
		n, err := s.client.ZCard(ctx, s.itemsKey(sec.Name)).Result()
		if err != nil {
			return fmt.Errorf("failed to read item index: %w", err)
		}
		nextItem[sec.Name] = n
	}

	pipe := s.client.TxPipeline()
	for _, sec := range sections {
		pipe.ZAddNX(ctx, s.indexKey(), backend.Z{Score: float64(nextSection), Member: sec.Name})
		nextSection++

		for _, it := range sec.Items {
			data, err := encodeValue(it.Value)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", sec.Name, it.Name, err)
			}
			pipe.ZAddNX(ctx, s.itemsKey(sec.Name), backend.Z{Score: float64(nextItem[sec.Name]), Member: it.Name})
			nextItem[sec.Name]++
			pipe.HSet(ctx, s.sectionKey(sec.Name), it.Name, data)
		}

		if s.ttl > 0 {
			pipe.Expire(ctx, s.itemsKey(sec.Name), s.ttl)
			pipe.Expire(ctx, s.sectionKey(sec.Name), s.ttl)
		}
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed redis: %w", err)
	}
	return nil
}

// Reset deletes every key of the configuration under the store's prefix.
func (s *Store) Reset(ctx context.Context) error {
	sections, err := s.Sections(ctx)
	if err != nil {
		return err
	}

	keys := []string{s.indexKey()}
	for _, sec := range sections {
		keys = append(keys, s.itemsKey(sec), s.sectionKey(sec))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset redis: %w", err)
	}
	return nil
}

// Get retrieves and decodes the raw value of an item.
func (s *Store) Get(ctx context.Context, section, item string) (any, bool, error) {
	val, err := s.client.HGet(ctx, s.sectionKey(section), item).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	v, err := decodeValue([]byte(val))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode %s.%s: %w", section, item, err)
	}
	return v, true, nil
}

// Set overwrites an existing item atomically.
func (s *Store) Set(ctx context.Context, section, item string, value any) error {
	data, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", section, item, err)
	}

	n, err := setExisting.Run(ctx, s.client, []string{s.sectionKey(section)}, item, data).Int()
	if err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s.%s: %w", section, item, ports.ErrItemNotFound)
	}
	return nil
}

// Sections lists sections in declaration order.
func (s *Store) Sections(ctx context.Context) ([]string, error) {
	sections, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

// Items lists the items of a section in declaration order.
func (s *Store) Items(ctx context.Context, section string) ([]string, error) {
	if err := s.client.ZScore(ctx, s.indexKey(), section).Err(); err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%s: %w", section, ports.ErrSectionNotFound)
		}
		return nil, fmt.Errorf("failed to read section index: %w", err)
	}

	items, err := s.client.ZRange(ctx, s.itemsKey(section), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Dir returns the directory relative paths resolve against.
func (s *Store) Dir() string { return s.dir }

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func encodeValue(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return data, nil
}

// decodeValue restores numbers as int when they have no fraction or
// exponent, float64 otherwise.
func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return restoreNumbers(v), nil
}

func restoreNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if !strings.ContainsAny(x.String(), ".eE") {
			if n, err := x.Int64(); err == nil {
				return int(n)
			}
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = restoreNumbers(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = restoreNumbers(x[k])
		}
		return x
	}
	return v
}
