// Package mutation runs state-changing operations: authorize, persist inside one
// transaction, classify failures, then fire post-commit side effects.
package mutation

import (
	"context"
	"fmt"

	"github.com/angelmondragon/catalog-backend/internal/authz"
	"github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	defaultConflictMessage = "A record with the same unique values already exists."
	storageMessage         = "An error occurred while saving to the database."
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	DB() *gorm.DB
}

// Authorizer decides whether claims may perform op.
type Authorizer interface {
	Authorize(claims *auth.Claims, op authz.Op) error
}

// Unit is one mutation request.
type Unit struct {
	Op     authz.Op
	Claims *auth.Claims
	// Persist runs inside the transaction; integrity checks belong here.
	Persist func(tx *gorm.DB) error
	// After runs once the transaction committed. Its error is logged, never returned.
	After func(ctx context.Context) error
	// Conflict is the message used when a unique constraint rejects the write.
	Conflict string
}

// Orchestrator executes Units against the database.
type Orchestrator struct {
	db   txRunner
	gate Authorizer
	logg *logger.Logger
}

func New(dbClient txRunner, gate Authorizer, logg *logger.Logger) (*Orchestrator, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if gate == nil {
		return nil, fmt.Errorf("authorizer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{db: dbClient, gate: gate, logg: logg}, nil
}

// Run authorizes the unit, persists it atomically and triggers its side effects.
func (o *Orchestrator) Run(ctx context.Context, u Unit) error {
	if u.Persist == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "mutation has no persist step")
	}
	if err := o.gate.Authorize(u.Claims, u.Op); err != nil {
		return authz.Explain(ctx, err)
	}

	if err := o.db.WithTx(ctx, u.Persist); err != nil {
		classified := Classify(err, u.Conflict)
		if pkgerrors.HasCode(classified, pkgerrors.CodeStorage) {
			fields := pkgerrors.Dump(err).Fields()
			fields["op"] = string(u.Op)
			o.logg.Error(o.logg.WithFields(ctx, fields), "mutation failed", err)
		}
		return classified
	}

	if u.After != nil {
		afterCtx := context.WithoutCancel(ctx)
		if err := u.After(afterCtx); err != nil {
			o.logg.Warn(o.logg.WithFields(afterCtx, map[string]any{
				"op":    string(u.Op),
				"error": err.Error(),
			}), "post-commit side effect failed")
		}
	}
	return nil
}

// Read authorizes op and runs fn against a context-bound connection.
func (o *Orchestrator) Read(ctx context.Context, op authz.Op, claims *auth.Claims, fn func(q *gorm.DB) error) error {
	if err := o.gate.Authorize(claims, op); err != nil {
		return authz.Explain(ctx, err)
	}
	if err := fn(o.db.DB().WithContext(ctx)); err != nil {
		return Classify(err, "")
	}
	return nil
}

// Classify maps a persistence failure onto the public error taxonomy. Typed errors
// pass through, unique violations become Conflict, and anything else becomes a
// StorageError that hides driver details.
func Classify(err error, conflictMessage string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if db.IsUniqueViolation(err, "") {
		if conflictMessage == "" {
			conflictMessage = defaultConflictMessage
		}
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, conflictMessage)
	}
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "resource not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, storageMessage)
}
