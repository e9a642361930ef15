package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/event-manager/internal/models"
)

// Конкурирующие регистрации и отмены по одному событию сериализуются
// блокировкой строки события (SELECT ... FOR UPDATE). Пока транзакция
// не завершена, остальные участники ждут, поэтому подсчёт подтверждённых
// мест и вставка новой записи атомарны: превышение max_participants и
// двойное повышение из листа ожидания невозможны. Операции по разным
// событиям друг друга не блокируют.

// lockEvent блокирует строку события до конца транзакции и возвращает
// его вместимость и признак активности.
func lockEvent(ctx context.Context, tx *sql.Tx, eventID int) (maxParticipants int, isActive bool, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT max_participants, is_active FROM events WHERE id = $1 FOR UPDATE`,
		eventID).Scan(&maxParticipants, &isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrEventNotFound
	}
	return maxParticipants, isActive, err
}

// RegisterForEvent создает регистрацию пользователя на событие внутри
// одной транзакции. Статус confirmed присваивается, пока количество
// подтверждённых регистраций меньше max_participants, иначе waitlist.
func (s *Storage) RegisterForEvent(ctx context.Context, eventID int, userUID string) (*models.Registration, error) {
	const op = "storage.RegisterForEvent"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	maxParticipants, isActive, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !isActive {
		return nil, fmt.Errorf("%s: %w", op, ErrEventInactive)
	}

	// Не более одной активной (confirmed или waitlist) регистрации
	// на пару пользователь-событие; отменённые записи не в счёт.
	var activeCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations
		 WHERE event_id = $1 AND user_uid = $2 AND status <> $3`,
		eventID, userUID, models.StatusCancelled).Scan(&activeCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if activeCount > 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyRegistered)
	}

	var confirmedCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations
		 WHERE event_id = $1 AND status = $2`,
		eventID, models.StatusConfirmed).Scan(&confirmedCount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := models.StatusConfirmed
	if confirmedCount >= maxParticipants {
		status = models.StatusWaitlist
	}

	reg := &models.Registration{
		UserUID: userUID,
		EventID: eventID,
		Status:  status,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO event_registrations (user_uid, event_id, status, registered_at)
		 VALUES ($1, $2, $3, now())
		 RETURNING id, registered_at`,
		userUID, eventID, status).Scan(&reg.ID, &reg.RegisteredAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reg, nil
}

// CancelRegistration отменяет активную регистрацию пользователя на событие.
// Если отменена подтверждённая регистрация, старейшая запись листа ожидания
// (по registered_at, при равенстве — по id) повышается до confirmed в той же
// транзакции. Отмена записи из листа ожидания никого не повышает: место
// не освобождалось. Возвращает результат отмены и данные повышенного
// участника для уведомления, если повышение произошло.
func (s *Storage) CancelRegistration(ctx context.Context, eventID int, userUID string) (*models.CancelResult, *models.Participant, error) {
	const op = "storage.CancelRegistration"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, _, err = lockEvent(ctx, tx, eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	// Повторная отмена не находит активной записи и завершается ошибкой,
	// поэтому двойное повышение исключено.
	result := &models.CancelResult{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, status FROM event_registrations
		 WHERE event_id = $1 AND user_uid = $2 AND status <> $3`,
		eventID, userUID, models.StatusCancelled).Scan(&result.CancelledID, &result.WasStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrRegistrationNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE event_registrations SET status = $1 WHERE id = $2`,
		models.StatusCancelled, result.CancelledID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	var promoted *models.Participant
	if result.WasStatus == models.StatusConfirmed {
		var p models.Participant
		err = tx.QueryRowContext(ctx,
			`SELECT r.id, r.user_uid, u.username, u.email, r.registered_at
			 FROM event_registrations r
			 JOIN users u ON u.uid = r.user_uid
			 WHERE r.event_id = $1 AND r.status = $2
			 ORDER BY r.registered_at, r.id
			 LIMIT 1`,
			eventID, models.StatusWaitlist).Scan(&p.RegistrationID, &p.UserUID,
			&p.Username, &p.Email, &p.RegisteredAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// лист ожидания пуст, место остаётся свободным
		case err != nil:
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE event_registrations SET status = $1 WHERE id = $2`,
				models.StatusConfirmed, p.RegistrationID)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", op, err)
			}
			p.Status = models.StatusConfirmed
			result.PromotedID = &p.RegistrationID
			promoted = &p
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, promoted, nil
}

// ListParticipants возвращает участников события, отсортированных по времени
// регистрации (при равенстве — по id), с пагинацией. Отменённые регистрации
// исключаются, если не запрошены фильтром явно.
func (s *Storage) ListParticipants(ctx context.Context, eventID int, statusFilter string, limit, offset int) ([]*models.Participant, error) {
	const op = "storage.ListParticipants"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.user_uid, u.username, u.email, r.status, r.registered_at
			  FROM event_registrations r
			  JOIN users u ON u.uid = r.user_uid
			  WHERE r.event_id = $1 AND r.status = ANY(
			      CASE WHEN $2 = '' THEN ARRAY['confirmed', 'waitlist']
			           ELSE ARRAY[$2] END)
			  ORDER BY r.registered_at, r.id
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, eventID, statusFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Participant
	for rows.Next() {
		var item models.Participant
		if err := rows.Scan(&item.RegistrationID, &item.UserUID, &item.Username,
			&item.Email, &item.Status, &item.RegisteredAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
