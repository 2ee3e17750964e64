package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// ErrorRateLimiter suppresses repeated identical errors so a flapping
// downstream (redis, typically) cannot flood the log.
type ErrorRateLimiter struct {
	mu          sync.Mutex
	errorCounts map[string]*errorEntry
}

type errorEntry struct {
	count      int
	firstSeen  time.Time
	suppressed int
}

var (
	rateLimiter     *ErrorRateLimiter
	rateLimitWindow = 1 * time.Minute
	maxErrorsPerMin = 5
)

func NewErrorRateLimiter() *ErrorRateLimiter {
	return &ErrorRateLimiter{
		errorCounts: make(map[string]*errorEntry),
	}
}

func (rl *ErrorRateLimiter) ShouldLog(errorKey string) (shouldLog bool, suppressedCount int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, exists := rl.errorCounts[errorKey]

	if !exists || now.Sub(entry.firstSeen) > rateLimitWindow {
		var suppressed int
		if exists {
			suppressed = entry.suppressed
		}
		rl.errorCounts[errorKey] = &errorEntry{count: 1, firstSeen: now}
		return true, suppressed
	}

	entry.count++
	if entry.count <= maxErrorsPerMin {
		return true, 0
	}

	entry.suppressed++
	return false, 0
}

// InitLogger initializes the structured logger with JSON format. The level
// argument wins over the LOG_LEVEL environment variable.
func InitLogger(level string) *logrus.Logger {
	log = logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	log.SetOutput(os.Stdout)

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	rateLimiter = NewErrorRateLimiter()

	log.WithFields(logrus.Fields{
		"event": "logger_initialized",
		"level": log.Level.String(),
	}).Info("Structured logging initialized")

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if log == nil {
		return InitLogger("")
	}
	return log
}

// Event types as constants
const (
	EventCommandReceived = "command_received"
	EventCommandDropped  = "command_dropped"
	EventOrderRejected   = "order_rejected"
	EventOrderCancelled  = "order_cancelled"
	EventTradeExecuted   = "trade_executed"
	EventStopTriggered   = "stop_triggered"
	EventPublishError    = "publish_error"
	EventSnapshotError   = "snapshot_error"
	EventServerStarted   = "server_started"
	EventServerStopped   = "server_stopped"
)

// LogCommandDropped logs an inbound command discarded without touching state.
func LogCommandDropped(cmdType string, err error) {
	GetLogger().WithFields(logrus.Fields{
		"event": EventCommandDropped,
		"type":  cmdType,
		"error": err.Error(),
	}).Warn("Command dropped")
}

// LogOrderRejected logs an order rejected at admission.
func LogOrderRejected(orderID uint64, symbol string, err error) {
	GetLogger().WithFields(logrus.Fields{
		"event":    EventOrderRejected,
		"order_id": orderID,
		"symbol":   symbol,
		"reason":   err.Error(),
	}).Warn("Order rejected")
}

// LogTradeExecuted logs an executed trade.
func LogTradeExecuted(tradeID, symbol string, buyOrderID, sellOrderID uint64, price, quantity string) {
	GetLogger().WithFields(logrus.Fields{
		"event":         EventTradeExecuted,
		"trade_id":      tradeID,
		"symbol":        symbol,
		"buy_order_id":  buyOrderID,
		"sell_order_id": sellOrderID,
		"price":         price,
		"quantity":      quantity,
	}).Info("Trade executed")
}

// LogOrderCancelled logs the outcome of a cancel command.
func LogOrderCancelled(orderID uint64, success bool) {
	GetLogger().WithFields(logrus.Fields{
		"event":    EventOrderCancelled,
		"order_id": orderID,
		"success":  success,
	}).Info("Order cancel processed")
}

// LogPublishError logs a best-effort downstream failure with rate limiting;
// these never affect book state.
func LogPublishError(target string, err error) {
	if rateLimiter == nil {
		rateLimiter = NewErrorRateLimiter()
	}

	errorKey := fmt.Sprintf("%s:%s", target, err.Error())
	shouldLog, suppressedCount := rateLimiter.ShouldLog(errorKey)
	if !shouldLog {
		return
	}

	fields := logrus.Fields{
		"event":  EventPublishError,
		"target": target,
		"error":  err.Error(),
	}
	if suppressedCount > 0 {
		fields["suppressed_count"] = suppressedCount
	}

	GetLogger().WithFields(fields).Error("Downstream publish failed")
}

// LogServerStarted logs process startup.
func LogServerStarted(httpAddr, commandsChannel string) {
	GetLogger().WithFields(logrus.Fields{
		"event":            EventServerStarted,
		"http_addr":        httpAddr,
		"commands_channel": commandsChannel,
	}).Info("Matching engine started")
}
