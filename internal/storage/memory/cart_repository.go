package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// cartRepositoryInMemory — in-memory реализация CartRepository.
// Это и есть эфемерный backend анонимных корзин: строки живут до очистки
// владельца или до остановки процесса. Хранилище всегда сегментировано
// по OwnerID (session ID), глобального «гостевого» ключа не существует.
type cartRepositoryInMemory struct {
	mu sync.RWMutex
	// byOwner: ownerID -> productID -> line.
	byOwner map[string]map[string]domain.CartLine
	// byID — индекс для операций по идентификатору позиции.
	byID map[string]domain.CartLine
}

// NewCartRepository возвращает in-memory реализацию корзины.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		byOwner: make(map[string]map[string]domain.CartLine),
		byID:    make(map[string]domain.CartLine),
	}
}

// List возвращает позиции владельца в стабильном порядке добавления.
func (r *cartRepositoryInMemory) List(ownerID string) ([]domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]domain.CartLine, 0, len(r.byOwner[ownerID]))
	for _, line := range r.byOwner[ownerID] {
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return lines[i].CreatedAt.Before(lines[j].CreatedAt)
		}
		return lines[i].ID < lines[j].ID
	})

	return lines, nil
}

// Get возвращает позицию или ErrCartLineNotFound.
func (r *cartRepositoryInMemory) Get(lineID string) (domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	line, ok := r.byID[lineID]
	if !ok {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}
	return line, nil
}

// FindByProduct ищет позицию владельца по товару.
func (r *cartRepositoryInMemory) FindByProduct(ownerID, productID string) (domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	line, ok := r.byOwner[ownerID][productID]
	if !ok {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}
	return line, nil
}

// Create сохраняет новую позицию; идентификатор генерируется при отсутствии.
func (r *cartRepositoryInMemory) Create(line domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	owner, ok := r.byOwner[line.OwnerID]
	if !ok {
		owner = make(map[string]domain.CartLine)
		r.byOwner[line.OwnerID] = owner
	}
	owner[line.ProductID] = line
	r.byID[line.ID] = line
	return nil
}

// Update перезаписывает существующую позицию.
func (r *cartRepositoryInMemory) Update(line domain.CartLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[line.ID]
	if !ok {
		return domain.ErrCartLineNotFound
	}
	delete(r.byOwner[current.OwnerID], current.ProductID)

	owner, ok := r.byOwner[line.OwnerID]
	if !ok {
		owner = make(map[string]domain.CartLine)
		r.byOwner[line.OwnerID] = owner
	}
	owner[line.ProductID] = line
	r.byID[line.ID] = line
	return nil
}

// Remove удаляет позицию; отсутствие — no-op.
func (r *cartRepositoryInMemory) Remove(lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.byID[lineID]
	if !ok {
		return nil
	}
	delete(r.byID, lineID)
	delete(r.byOwner[line.OwnerID], line.ProductID)
	if len(r.byOwner[line.OwnerID]) == 0 {
		delete(r.byOwner, line.OwnerID)
	}
	return nil
}

// Clear удаляет все позиции владельца.
func (r *cartRepositoryInMemory) Clear(ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range r.byOwner[ownerID] {
		delete(r.byID, line.ID)
	}
	delete(r.byOwner, ownerID)
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
