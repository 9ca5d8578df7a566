package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const documentTTL = time.Hour

func documentKey(projectID, tableID, id string) string {
	return "doc:" + projectID + ":" + tableID + ":" + id
}

var _ DocumentCache = (*Redis)(nil)

type Redis struct {
	client *redis.Client
}

func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
		Protocol: 2,  // Connection protocol
	})

	return &Redis{client: client}
}

func (r *Redis) GetDocument(ctx context.Context, projectID, tableID, id string) (map[string]interface{}, error) {
	res := r.client.Get(ctx, documentKey(projectID, tableID, id))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if err := json.Unmarshal(buf, &fields); err != nil {
		return nil, err
	}

	return fields, nil
}

func (r *Redis) SetDocument(ctx context.Context, projectID, tableID, id string, fields map[string]interface{}) error {
	marshal, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, documentKey(projectID, tableID, id), marshal, documentTTL).Err()
}

func (r *Redis) DeleteDocument(ctx context.Context, projectID, tableID, id string) error {
	return r.client.Del(ctx, documentKey(projectID, tableID, id)).Err()
}
