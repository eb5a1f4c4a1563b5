package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the key store
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
	// idempotencyPendingTTL bounds how long a reservation blocks retries if
	// the request that made it never finishes.
	idempotencyPendingTTL = 2 * time.Minute
)

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a POST is retried with the
// same Idempotency-Key. Requests without the header run normally.
//
// The key is reserved before the handler runs, so of two concurrent requests
// with the same key only one reaches the handler; the other gets 409. Only
// 2xx responses are kept. Any other outcome releases the key so a failed
// sale can be retried with it.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Could not read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		hash := hex.EncodeToString(sum[:])

		// uuid.Nil when auth is disabled
		userID := UserID(c)
		ctx := c.Request.Context()

		ikey := &entity.IdempotencyKey{
			Key:         key,
			UserID:      userID,
			Endpoint:    c.Request.Method + " " + c.FullPath(),
			RequestHash: hash,
			ExpiresAt:   time.Now().Add(idempotencyPendingTTL),
		}
		reserved, existing, err := reserve(ctx, repo, ikey)
		if err != nil {
			log.Printf("Idempotency reservation failed for key %q: %v", key, err)
			response.Error(c, err)
			c.Abort()
			return
		}
		if !reserved {
			replay(c, existing, hash)
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		defer func() {
			if r := recover(); r != nil {
				release(repo, ikey)
				panic(r)
			}
		}()

		c.Next()

		storeCtx := context.WithoutCancel(ctx)
		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			release(repo, ikey)
			return
		}
		if err := repo.Complete(storeCtx, ikey.ID, status, blw.body.String(), time.Now().Add(IdempotencyKeyTTL)); err != nil {
			log.Printf("Failed to store idempotency key %q: %v", key, err)
		}
	}
}

// reserve inserts a pending key. When the key is already held it returns
// the holder instead. An expired holder that has not been purged yet is
// removed and the insert retried once.
func reserve(ctx context.Context, repo repository.IdempotencyRepository, ikey *entity.IdempotencyKey) (bool, *entity.IdempotencyKey, error) {
	for attempt := 0; attempt < 2; attempt++ {
		err := repo.Create(ctx, ikey)
		if err == nil {
			return true, nil, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return false, nil, err
		}

		existing, err := repo.GetByKey(ctx, ikey.Key, ikey.UserID)
		if err != nil {
			return false, nil, err
		}
		if existing != nil {
			return false, existing, nil
		}
		if err := repo.DeleteExpiredKey(ctx, ikey.Key, ikey.UserID); err != nil {
			return false, nil, err
		}
		ikey.ID = uuid.Nil
	}
	return false, nil, apperror.NewAppError(http.StatusConflict, "Idempotency-Key is busy, retry the request")
}

func replay(c *gin.Context, existing *entity.IdempotencyKey, hash string) {
	defer c.Abort()
	if existing.RequestHash != "" && existing.RequestHash != hash {
		response.BadRequest(c, "Idempotency-Key was already used for a different request")
		return
	}
	if existing.ResponseCode == 0 {
		response.Conflict(c, "A request with this Idempotency-Key is still being processed")
		return
	}
	c.Header(IdempotencyReplayedHeader, "true")
	c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
}

func release(repo repository.IdempotencyRepository, ikey *entity.IdempotencyKey) {
	if err := repo.Delete(context.Background(), ikey.ID); err != nil {
		log.Printf("Failed to release idempotency key %q: %v", ikey.Key, err)
	}
}
