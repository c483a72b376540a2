package domain

// CartRepository описывает хранилище позиций корзины. Реализуется дважды:
// in-memory хранилище для анонимных сессий и PostgreSQL для
// аутентифицированных владельцев. Каждая мутация — собственный commit.
type CartRepository interface {
	// List возвращает все позиции владельца; пустой slice, если их нет.
	List(ownerID string) ([]CartLine, error)
	// Get возвращает позицию по идентификатору или ErrCartLineNotFound.
	Get(lineID string) (CartLine, error)
	// FindByProduct ищет позицию владельца по товару или возвращает ErrCartLineNotFound.
	FindByProduct(ownerID, productID string) (CartLine, error)
	// Create сохраняет новую позицию.
	Create(line CartLine) error
	// Update перезаписывает позицию или возвращает ErrCartLineNotFound.
	Update(line CartLine) error
	// Remove удаляет позицию; отсутствие позиции ошибкой не считается.
	Remove(lineID string) error
	// Clear удаляет все позиции владельца.
	Clear(ownerID string) error
}

// ProductRepository описывает доступ ядра к каталогу товаров.
type ProductRepository interface {
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// Create сохраняет новый товар.
	Create(product Product) error
	// Update перезаписывает товар или возвращает ErrProductNotFound.
	Update(product Product) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// Save применяет обновления к заголовку заказа с учётом optimistic locking;
	// позиции заказа неизменяемы и не перезаписываются.
	Save(order Order) error
}
