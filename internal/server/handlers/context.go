package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

// ActorIDKey ключ для хранения actor_id в контексте
const ActorIDKey contextKey = "actor_id"

// GetActorID извлекает actor_id из контекста запроса
func GetActorID(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(ActorIDKey).(string)
	return actorID, ok
}
