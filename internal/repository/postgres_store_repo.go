package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/storelist/internal/model"
)

const storeColumns = `id, name, url, district, phone_number, opening_hours, price_range`

// PostgresStoreRepo はPostgreSQLを使用した店舗リポジトリ。
type PostgresStoreRepo struct {
	db *sql.DB
}

// NewPostgresStoreRepo はPostgresStoreRepoを生成する。
func NewPostgresStoreRepo(db *sql.DB) *PostgresStoreRepo {
	return &PostgresStoreRepo{db: db}
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// List は全店舗を取得する。
func (r *PostgresStoreRepo) List(ctx context.Context) ([]*model.Store, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := make([]*model.Store, 0)
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stores: %w", err)
	}

	return stores, nil
}

// FindByID は指定IDの店舗を取得する。見つからない場合はnilを返す。
func (r *PostgresStoreRepo) FindByID(ctx context.Context, id int64) (*model.Store, error) {
	store, err := scanStore(r.db.QueryRowContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find store: %w", err)
	}
	return store, nil
}

// Create は店舗を作成する。
func (r *PostgresStoreRepo) Create(ctx context.Context, fields model.StoreFields) (*model.Store, error) {
	store, err := scanStore(r.db.QueryRowContext(ctx,
		`INSERT INTO stores (name, url, district, phone_number, opening_hours, price_range)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+storeColumns,
		fields.Name, fields.URL, fields.District,
		fields.PhoneNumber, fields.OpeningHours, fields.PriceRange,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

// Update は指定IDの店舗を更新する。該当行がない場合はnilを返す。
func (r *PostgresStoreRepo) Update(ctx context.Context, id int64, fields model.StoreFields) (*model.Store, error) {
	store, err := scanStore(r.db.QueryRowContext(ctx,
		`UPDATE stores SET
		    name = $1, url = $2, district = $3,
		    phone_number = $4, opening_hours = $5, price_range = $6
		 WHERE id = $7
		 RETURNING `+storeColumns,
		fields.Name, fields.URL, fields.District,
		fields.PhoneNumber, fields.OpeningHours, fields.PriceRange,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}
	return store, nil
}

// Delete は指定IDの店舗を削除する。
func (r *PostgresStoreRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete store: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Truncate は全店舗を削除しIDシーケンスをリセットする。
func (r *PostgresStoreRepo) Truncate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `TRUNCATE TABLE stores RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to truncate stores: %w", err)
	}
	return nil
}

func scanStore(row rowScanner) (*model.Store, error) {
	store := &model.Store{}
	var url, district, phone, hours, price sql.NullString

	if err := row.Scan(
		&store.ID, &store.Name, &url, &district,
		&phone, &hours, &price,
	); err != nil {
		return nil, err
	}

	store.URL = nullStringPtr(url)
	store.District = nullStringPtr(district)
	store.PhoneNumber = nullStringValue(phone)
	store.OpeningHours = nullStringValue(hours)
	store.PriceRange = nullStringValue(price)

	return store, nil
}

// nullStringValue はsql.NullStringを文字列に変換する。NULLは空文字列になる。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullStringPtr はsql.NullStringをポインタに変換する。NULLはnilになる。
func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// compile-time interface check
var _ StoreRepository = (*PostgresStoreRepo)(nil)
