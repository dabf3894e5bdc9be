package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

// Collection names one of the two journal collections.
type Collection string

const (
	CollectionDecks Collection = "decks"
	CollectionGames Collection = "games"
)

// Change describes a state transition. Snapshot holds both collections
// after the change; only the named collection differs from before.
type Change struct {
	Collection Collection
	Snapshot   model.Snapshot
}

// Observer is notified after every mutation.
type Observer interface {
	OnChange(ctx context.Context, change Change) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, change Change) error

// OnChange implements Observer.
func (f ObserverFunc) OnChange(ctx context.Context, change Change) error {
	return f(ctx, change)
}

// notify runs every observer even if one fails. The in-memory change is
// kept regardless.
func (j *Journal) notify(ctx context.Context, c Collection) error {
	if len(j.observers) == 0 {
		return nil
	}
	change := Change{Collection: c, Snapshot: j.Snapshot()}
	var errs []error
	for _, o := range j.observers {
		if err := o.OnChange(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to propagate %s change: %w", c, errors.Join(errs...))
	}
	return nil
}

// LoggingObserver logs every transition at debug level.
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver returns an observer writing to logger.
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// OnChange implements Observer.
func (o *LoggingObserver) OnChange(ctx context.Context, change Change) error {
	o.logger.DebugContext(ctx, "journal changed",
		slog.String("collection", string(change.Collection)),
		slog.Int("decks", len(change.Snapshot.Decks)),
		slog.Int("games", len(change.Snapshot.Games)),
	)
	return nil
}
