package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository;
// используется как персистентный backend корзины.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) List(ownerID string) ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, product_id, qty, unit_price_minor, created_at, updated_at
		FROM cart_lines
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ID, &line.OwnerID, &line.ProductID, &line.Qty,
			&line.UnitPriceMinor, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) Get(lineID string) (domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var line domain.CartLine
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, product_id, qty, unit_price_minor, created_at, updated_at
		FROM cart_lines
		WHERE id = $1
	`, lineID).Scan(&line.ID, &line.OwnerID, &line.ProductID, &line.Qty,
		&line.UnitPriceMinor, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartLine{}, domain.ErrCartLineNotFound
		}
		return domain.CartLine{}, fmt.Errorf("select cart line: %w", err)
	}

	return line, nil
}

func (r *cartRepository) FindByProduct(ownerID, productID string) (domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var line domain.CartLine
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, product_id, qty, unit_price_minor, created_at, updated_at
		FROM cart_lines
		WHERE owner_id = $1 AND product_id = $2
	`, ownerID, productID).Scan(&line.ID, &line.OwnerID, &line.ProductID, &line.Qty,
		&line.UnitPriceMinor, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartLine{}, domain.ErrCartLineNotFound
		}
		return domain.CartLine{}, fmt.Errorf("find cart line by product: %w", err)
	}

	return line, nil
}

func (r *cartRepository) Create(line domain.CartLine) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_lines (id, owner_id, product_id, qty, unit_price_minor, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, line.ID, line.OwnerID, line.ProductID, line.Qty, line.UnitPriceMinor, line.CreatedAt, line.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cart line for product already exists: %w", err)
		}
		return fmt.Errorf("insert cart line: %w", err)
	}

	return nil
}

// Update перезаписывает количество и snapshot-цену; last-write-wins.
func (r *cartRepository) Update(line domain.CartLine) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_lines
		SET qty = $2,
		    unit_price_minor = $3,
		    updated_at = $4
		WHERE id = $1
	`, line.ID, line.Qty, line.UnitPriceMinor, line.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartLineNotFound
	}

	return nil
}

// Remove удаляет позицию; отсутствие строки — no-op.
func (r *cartRepository) Remove(lineID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ownerID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
