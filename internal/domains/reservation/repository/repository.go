package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/reservation/model"
	roomModel "lodge/internal/domains/room/model"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/logger"
	gRepo "lodge/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Reservation interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	CreateConfirmed(ctx context.Context, reservation model.Reservation) error
	UpdateStatusGuarded(ctx context.Context, id string, fields map[string]any, guard func(current model.Reservation) error) error
	OccupiedRoomIDs(ctx context.Context, checkIn, checkOut time.Time) ([]string, error)
	HasConfirmedOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
}

// overlapCondition is the single source of the half-open range test: an
// existing stay collides when it starts before the candidate check-out and
// ends after the candidate check-in. Back-to-back stays pass. The argument
// positions are the placeholder indexes of status, check-out and check-in.
func overlapCondition(statusArg, checkOutArg, checkInArg int) string {
	return fmt.Sprintf("status = $%d AND check_in < $%d AND check_out > $%d", statusArg, checkOutArg, checkInArg)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// CreateConfirmed inserts a confirmed reservation after re-validating the
// overlap rule inside a transaction. The room row is locked first so two
// concurrent requests for the same room serialize, and the loser of the race
// sees the winner's row in the overlap re-check.
func (repo *repositoryImpl) CreateConfirmed(ctx context.Context, reservation model.Reservation) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.CreateConfirmed")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.Beginx()
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedRoomID string

	query := fmt.Sprintf("SELECT id FROM %s WHERE id = $1 FOR UPDATE", roomModel.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = tx.GetContext(ctx, &lockedRoomID, query, reservation.RoomID)
	if errors.Is(err, sql.ErrNoRows) {
		return failure.NotFound("room not found") // nolint:wrapcheck
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to lock room (%s): %w", model.EntityName, err)
	}

	overlaps, err := repo.hasConfirmedOverlapTx(ctx, tx, reservation.RoomID, reservation.CheckIn, reservation.CheckOut)
	if err != nil {
		return err
	}

	if overlaps {
		return failure.RoomConflict("room is already reserved for the requested dates") // nolint:wrapcheck
	}

	if err = repo.InsertTx(ctx, tx, reservation); err != nil {
		return err // nolint:wrapcheck
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return nil
}

// UpdateStatusGuarded re-reads the reservation under a row lock, re-applies
// the caller's rule against the current state, and only then applies the
// update. The guard error is returned untouched so business kinds survive.
func (repo *repositoryImpl) UpdateStatusGuarded(ctx context.Context, id string, fields map[string]any, guard func(current model.Reservation) error) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.UpdateStatusGuarded")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.Beginx()
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction (%s): %w", model.EntityName, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current model.Reservation

	query := fmt.Sprintf("SELECT id, guest_id, room_id, check_in, check_out, status, created_at, modified_at, created_by, modified_by FROM %s WHERE id = $1 FOR UPDATE", model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = tx.GetContext(ctx, &current, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to lock reservation (%s): %w", model.EntityName, err)
	}

	if err = guard(current); err != nil {
		return err
	}

	updateQuery := fmt.Sprintf("UPDATE %s SET status = :status, modified_at = :modified_at, modified_by = :modified_by WHERE id = :id", model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, updateQuery)

	args := map[string]any{model.FieldID: id}
	for col, val := range fields {
		args[col] = val
	}

	if _, err = tx.NamedExecContext(ctx, updateQuery, args); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to update reservation status (%s): %w", model.EntityName, err)
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", model.EntityName, err)
	}

	return nil
}

// OccupiedRoomIDs lists the rooms that already hold a confirmed reservation
// overlapping the half-open range [checkIn, checkOut).
func (repo *repositoryImpl) OccupiedRoomIDs(ctx context.Context, checkIn, checkOut time.Time) (ids []string, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.OccupiedRoomIDs")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf("SELECT DISTINCT room_id FROM %s WHERE %s", model.TableName, overlapCondition(1, 2, 3))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = repo.db.Read.SelectContext(ctx, &ids, query, model.StatusConfirmed, checkOut, checkIn)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to get occupied rooms (%s): %w", model.EntityName, err)
	}

	return ids, nil
}

func (repo *repositoryImpl) HasConfirmedOverlap(ctx context.Context, roomID string, checkIn, checkOut time.Time) (overlaps bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.HasConfirmedOverlap")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE room_id = $1 AND %s)", model.TableName, overlapCondition(2, 3, 4))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = repo.db.Read.GetContext(ctx, &overlaps, query, roomID, model.StatusConfirmed, checkOut, checkIn)
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to check reservation overlap (%s): %w", model.EntityName, err)
	}

	return overlaps, nil
}

func (repo *repositoryImpl) hasConfirmedOverlapTx(ctx context.Context, tx *sqlx.Tx, roomID string, checkIn, checkOut time.Time) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE room_id = $1 AND %s)", model.TableName, overlapCondition(2, 3, 4))

	var overlaps bool

	err := tx.GetContext(ctx, &overlaps, query, roomID, model.StatusConfirmed, checkOut, checkIn)
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to check reservation overlap (%s): %w", model.EntityName, err)
	}

	return overlaps, nil
}
