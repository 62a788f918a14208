package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	"github.com/maxduke/rsi6-monitor-bot/pkg/db"
)

// WhitelistRepo persists the set of users allowed to talk to the bot.
type WhitelistRepo struct {
	txm *db.PgTxManager
}

func NewWhitelistRepo(txm *db.PgTxManager) *WhitelistRepo {
	return &WhitelistRepo{txm: txm}
}

// Add inserts a user into the whitelist; adding an existing user is a no-op.
func (p *WhitelistRepo) Add(ctx context.Context, userID int64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.WhitelistAdd: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctxTx, `
			INSERT INTO whitelist (user_id) VALUES ($1)
			ON CONFLICT (user_id) DO NOTHING`, userID)
		return execErr
	})
}

// Remove deletes a user from the whitelist.
func (p *WhitelistRepo) Remove(ctx context.Context, userID int64) (err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("pg.WhitelistRemove: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctxTx,
			`DELETE FROM whitelist WHERE user_id = $1`, userID)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Contains reports whether the user is whitelisted.
func (p *WhitelistRepo) Contains(ctx context.Context, userID int64) (ok bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.WhitelistContains: %w", err)
		}
	}()

	err = p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx,
			`SELECT EXISTS (SELECT 1 FROM whitelist WHERE user_id = $1)`, userID)
		return row.Scan(&ok)
	})
	return ok, err
}

// List returns all whitelist entries ordered by user id.
func (p *WhitelistRepo) List(ctx context.Context) (entries []models.WhitelistEntry, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.WhitelistList: %w", err)
		}
	}()

	err = p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, queryErr := tx.Query(ctxTx,
			`SELECT user_id, daily_briefing_enabled FROM whitelist ORDER BY user_id`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		for rows.Next() {
			var e models.WhitelistEntry
			if scanErr := rows.Scan(&e.UserID, &e.DailyBriefingEnabled); scanErr != nil {
				return scanErr
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	return entries, err
}

// SetBriefing toggles the daily briefing flag for a whitelisted user.
func (p *WhitelistRepo) SetBriefing(ctx context.Context, userID int64, enabled bool) (err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("pg.WhitelistSetBriefing: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctxTx,
			`UPDATE whitelist SET daily_briefing_enabled = $2 WHERE user_id = $1`,
			userID, enabled)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// BriefingUsers returns the ids of users who opted into the daily briefing.
func (p *WhitelistRepo) BriefingUsers(ctx context.Context) (ids []int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.BriefingUsers: %w", err)
		}
	}()

	err = p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, queryErr := tx.Query(ctxTx,
			`SELECT user_id FROM whitelist WHERE daily_briefing_enabled ORDER BY user_id`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if scanErr := rows.Scan(&id); scanErr != nil {
				return scanErr
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	return ids, err
}
