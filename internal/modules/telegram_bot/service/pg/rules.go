package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
	"github.com/maxduke/rsi6-monitor-bot/pkg/db"
)

// ErrDuplicateRule signals that an identical (user, asset, band) rule
// already exists.
var ErrDuplicateRule = errors.New("rule already exists")

// ErrNotFound signals that no row matched the operation.
var ErrNotFound = errors.New("not found")

// RuleRepo persists RSI band rules.
type RuleRepo struct {
	txm *db.PgTxManager
}

func NewRuleRepo(txm *db.PgTxManager) *RuleRepo {
	return &RuleRepo{txm: txm}
}

const ruleColumns = `id, user_id, asset_code, asset_name, rsi_min, rsi_max, is_active, last_notified_rsi, notification_count`

func scanRule(row pgx.Row) (models.Rule, error) {
	var r models.Rule
	err := row.Scan(&r.ID, &r.UserID, &r.AssetCode, &r.AssetName, &r.RSIMin,
		&r.RSIMax, &r.IsActive, &r.LastNotifiedRSI, &r.NotificationCount)
	return r, err
}

// Create inserts a new active rule for the user.
func (p *RuleRepo) Create(ctx context.Context, r models.Rule) (rule models.Rule, err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrDuplicateRule) {
			err = fmt.Errorf("pg.CreateRule: %w", err)
		}
	}()

	err = p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctxTx, `
			INSERT INTO rules (user_id, asset_code, asset_name, rsi_min, rsi_max)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+ruleColumns,
			r.UserID, r.AssetCode, r.AssetName, r.RSIMin, r.RSIMax)
		var scanErr error
		rule, scanErr = scanRule(row)
		return scanErr
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		err = ErrDuplicateRule
	}
	return rule, err
}

// Delete removes a rule by id, scoped to its owner.
func (p *RuleRepo) Delete(ctx context.Context, userID, ruleID int64) (err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("pg.DeleteRule: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctxTx,
			`DELETE FROM rules WHERE id = $1 AND user_id = $2`, ruleID, userID)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListByUser returns all rules owned by the user, oldest first.
func (p *RuleRepo) ListByUser(ctx context.Context, userID int64) (rules []models.Rule, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.ListRulesByUser: %w", err)
		}
	}()

	err = p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, queryErr := tx.Query(ctxTx,
			`SELECT `+ruleColumns+` FROM rules WHERE user_id = $1 ORDER BY id`, userID)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		for rows.Next() {
			r, scanErr := scanRule(rows)
			if scanErr != nil {
				return scanErr
			}
			rules = append(rules, r)
		}
		return rows.Err()
	})
	return rules, err
}

// ActiveRules returns every active rule across all users.
func (p *RuleRepo) ActiveRules(ctx context.Context) (rules []models.Rule, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.ActiveRules: %w", err)
		}
	}()

	err = p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, queryErr := tx.Query(ctxTx,
			`SELECT `+ruleColumns+` FROM rules WHERE is_active ORDER BY id`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		for rows.Next() {
			r, scanErr := scanRule(rows)
			if scanErr != nil {
				return scanErr
			}
			rules = append(rules, r)
		}
		return rows.Err()
	})
	return rules, err
}

// SetActive flips a rule's active flag, scoped to its owner.
func (p *RuleRepo) SetActive(ctx context.Context, userID, ruleID int64, active bool) (err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("pg.SetRuleActive: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctxTx,
			`UPDATE rules SET is_active = $3 WHERE id = $1 AND user_id = $2`,
			ruleID, userID, active)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RecordNotified stores the alerted RSI and advances the notification count.
func (p *RuleRepo) RecordNotified(ctx context.Context, ruleID int64, rsi float64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.RecordNotified: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctxTx, `
			UPDATE rules
			SET last_notified_rsi = $2, notification_count = notification_count + 1
			WHERE id = $1`, ruleID, rsi)
		return execErr
	})
}

// RecordSeen stores the latest in-band RSI without touching the count.
func (p *RuleRepo) RecordSeen(ctx context.Context, ruleID int64, rsi float64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.RecordSeen: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctxTx,
			`UPDATE rules SET last_notified_rsi = $2 WHERE id = $1`, ruleID, rsi)
		return execErr
	})
}

// ResetTrigger re-arms a rule after the RSI left its band, recording the
// out-of-band value so later cycles see the exit.
func (p *RuleRepo) ResetTrigger(ctx context.Context, ruleID int64, rsi float64) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.ResetTrigger: %w", err)
		}
	}()

	return p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, execErr := tx.Exec(ctxTx, `
			UPDATE rules
			SET last_notified_rsi = $2, notification_count = 0
			WHERE id = $1`, ruleID, rsi)
		return execErr
	})
}

// DistinctAssets returns each watched (code, name) pair once.
func (p *RuleRepo) DistinctAssets(ctx context.Context) (assets map[string]string, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.DistinctAssets: %w", err)
		}
	}()

	assets = make(map[string]string)
	err = p.txm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, queryErr := tx.Query(ctxTx,
			`SELECT DISTINCT asset_code, asset_name FROM rules`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		for rows.Next() {
			var code, name string
			if scanErr := rows.Scan(&code, &name); scanErr != nil {
				return scanErr
			}
			assets[code] = name
		}
		return rows.Err()
	})
	return assets, err
}
