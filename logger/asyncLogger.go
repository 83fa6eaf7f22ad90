package logger

import (
	"fmt"
	"sync"

	log_model "scrap-collect/models/log"
	"scrap-collect/types"

	"gorm.io/gorm"
)

// AsyncLogger persists HTTP request logs off the request path.
type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
	done    chan struct{}
	once    sync.Once
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100),
		done:    make(chan struct{}),
	}
}

// ProcessLog drains the queue until Close is called.
func (logger *AsyncLogger) ProcessLog() {
	Info("Starting asynchronous request logger...")
	defer close(logger.done)

	for logEntry := range logger.channel {
		dbLog := log_model.Log{
			Method:          logEntry.Method,
			URL:             logEntry.URL,
			RequestBody:     logEntry.RequestBody,
			ResponseBody:    logEntry.ResponseBody,
			RequestHeaders:  logEntry.RequestHeaders,
			ResponseHeaders: logEntry.ResponseHeaders,
			StatusCode:      logEntry.StatusCode,
			CallerID:        logEntry.CallerID,
			CreatedAt:       logEntry.CreatedAt,
		}

		if err := logger.db.Create(&dbLog).Error; err != nil {
			Error(fmt.Sprintf("Failed to insert request log %s %s", dbLog.Method, dbLog.URL), err)
		}
	}
}

// Log queues an entry, dropping it when the queue is full.
func (logger *AsyncLogger) Log(entry types.LogEntry) {
	select {
	case logger.channel <- entry:
	default:
		Warning(fmt.Sprintf("Request log queue full, dropping %s %s", entry.Method, entry.URL))
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (logger *AsyncLogger) Close() {
	logger.once.Do(func() {
		close(logger.channel)
		<-logger.done
	})
}
