package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/event-manager/internal/models"
)

// CreateEvent вставляет новое событие и возвращает его ID.
func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (int, error) {
	const op = "storage.CreateEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO events (title, description, start_datetime, end_datetime,
			      location, max_participants, is_active, organizer_uid)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		event.Title, event.Description, event.StartDatetime, event.EndDatetime,
		event.Location, event.MaxParticipants, event.IsActive, event.OrganizerUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadEvent возвращает событие по его ID.
func (s *Storage) ReadEvent(ctx context.Context, id int) (*models.Event, error) {
	const op = "storage.ReadEvent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, start_datetime, end_datetime,
			      location, max_participants, is_active, created_at, organizer_uid
			  FROM events WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Event
	if err := row.Scan(&result.ID, &result.Title, &result.Description,
		&result.StartDatetime, &result.EndDatetime, &result.Location,
		&result.MaxParticipants, &result.IsActive, &result.CreatedAt,
		&result.OrganizerUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListEvents возвращает список всех событий с пагинацией.
func (s *Storage) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	const op = "storage.ListEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, start_datetime, end_datetime,
			      location, max_participants, is_active, created_at, organizer_uid
			  FROM events
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Event
	for rows.Next() {
		var item models.Event
		if err := rows.Scan(&item.ID, &item.Title, &item.Description,
			&item.StartDatetime, &item.EndDatetime, &item.Location,
			&item.MaxParticipants, &item.IsActive, &item.CreatedAt,
			&item.OrganizerUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateEvent применяет частичное обновление события: изменяются только
// заполненные поля patch. Возвращает количество изменённых строк.
func (s *Storage) UpdateEvent(ctx context.Context, id int, patch models.EventPatch) (int, error) {
	const op = "storage.UpdateEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.StartDatetime != nil {
		add("start_datetime", *patch.StartDatetime)
	}
	if patch.EndDatetime != nil {
		add("end_datetime", *patch.EndDatetime)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.MaxParticipants != nil {
		add("max_participants", *patch.MaxParticipants)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveEvent удаляет событие по ID; каскад в базе удаляет его регистрации.
// Возвращает количество удалённых строк.
func (s *Storage) RemoveEvent(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM events WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
