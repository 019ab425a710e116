package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix   = "user:%d"
	AnimalKeyPrefix = "animal:%d"
)

const (
	UserTTL   = 5 * time.Minute
	AnimalTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func AnimalKey(animalID uint) string {
	return fmt.Sprintf(AnimalKeyPrefix, animalID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateAnimal(ctx context.Context, animalID uint) {
	Invalidate(ctx, AnimalKey(animalID))
}
