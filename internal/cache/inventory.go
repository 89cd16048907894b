package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	TemplateKeyPrefix     = "template:%s"
	TemplateListKeyPrefix = "templates:%s:%s"
	ThreadKeyPrefix       = "thread:%s"
)

const (
	TemplateTTL     = 10 * time.Minute
	TemplateListTTL = 5 * time.Minute
	ThreadTTL       = 2 * time.Minute
)

func TemplateKey(templateKey string) string {
	return fmt.Sprintf(TemplateKeyPrefix, templateKey)
}

// TemplateListKey keys the active-template listing by its two filters.
func TemplateListKey(category, triggerEvent string) string {
	if category == "" {
		category = "all"
	}
	if triggerEvent == "" {
		triggerEvent = "all"
	}
	return fmt.Sprintf(TemplateListKeyPrefix, category, triggerEvent)
}

func ThreadKey(threadID string) string {
	return fmt.Sprintf(ThreadKeyPrefix, threadID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateThread(ctx context.Context, threadID string) {
	Invalidate(ctx, ThreadKey(threadID))
}

func InvalidateTemplate(ctx context.Context, templateKey string) {
	Invalidate(ctx, TemplateKey(templateKey))
}
