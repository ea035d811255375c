package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"samudra_back_end/internal/models"
)

const memoryTokenTTL = time.Hour

// Memory est un backend en mémoire : mêmes contrats que les dépôts Supabase,
// utilisé en local (DATA_BACKEND=memory) et dans les tests.
type Memory struct {
	mu sync.Mutex

	products map[string]models.Product
	cart     map[string]models.CartItem // id → ligne (Product non stocké)
	orders   []models.Order
	users    map[string]memoryUser // e-mail → compte
	revoked  map[string]bool

	secret []byte
	now    func() time.Time
}

type memoryUser struct {
	id   string
	hash []byte
}

func NewMemory(jwtSecret string) *Memory {
	if jwtSecret == "" {
		jwtSecret = "memory-secret"
	}
	return &Memory{
		products: make(map[string]models.Product),
		cart:     make(map[string]models.CartItem),
		users:    make(map[string]memoryUser),
		revoked:  make(map[string]bool),
		secret:   []byte(jwtSecret),
		now:      time.Now,
	}
}

// SeedProducts ajoute ou remplace des produits.
func (m *Memory) SeedProducts(products ...models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt == nil {
			created := m.now()
			p.CreatedAt = &created
		}
		m.products[p.ID] = p
	}
}

// UpdateProduct modifie un produit existant (prix, disponibilité…).
func (m *Memory) UpdateProduct(id string, fn func(*models.Product)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	fn(&p)
	m.products[id] = p
	return nil
}

// DeleteProduct retire un produit ; les lignes de panier qui le référencent
// restent, sans jointure.
func (m *Memory) DeleteProduct(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
}

// CartRows retourne le nombre de lignes de panier stockées pour l'utilisateur.
func (m *Memory) CartRows(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, item := range m.cart {
		if item.UserID == userID {
			n++
		}
	}
	return n
}

// --- produits ---

func (m *Memory) ListAvailable(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Available {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].CreatedAt, out[j].CreatedAt
		if ci.Equal(*cj) {
			return out[i].Name < out[j].Name
		}
		return ci.After(*cj)
	})
	return out, nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

// --- panier ---

func (m *Memory) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.CartItem, 0)
	for _, item := range m.cart {
		if item.UserID == userID {
			out = append(out, m.joined(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AddOrIncrement(ctx context.Context, userID, productID string) (models.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return models.CartItem{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[productID]; !ok {
		return models.CartItem{}, ErrNotFound
	}
	for id, item := range m.cart {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity++
			m.cart[id] = item
			return m.joined(item), nil
		}
	}
	item := models.CartItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
	}
	m.cart[item.ID] = item
	return m.joined(item), nil
}

func (m *Memory) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.cart[itemID]
	if !ok {
		return nil
	}
	item.Quantity = quantity
	m.cart[itemID] = item
	return nil
}

func (m *Memory) DeleteItem(ctx context.Context, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cart, itemID)
	return nil
}

func (m *Memory) DeleteUserItems(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.cart {
		if item.UserID == userID {
			delete(m.cart, id)
		}
	}
	return nil
}

func (m *Memory) joined(item models.CartItem) models.CartItem {
	if p, ok := m.products[item.ProductID]; ok {
		item.Product = &p
	}
	return item
}

// --- commandes ---

func (m *Memory) InsertOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if err := ctx.Err(); err != nil {
		return models.Order{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	order.ID = uuid.NewString()
	order.CreatedAt = m.now()
	order.Items = append([]models.OrderLine(nil), order.Items...)
	m.orders = append(m.orders, order)
	return cloneOrder(order), nil
}

func (m *Memory) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Order, 0)
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].UserID == userID {
			out = append(out, cloneOrder(m.orders[i]))
		}
	}
	return out, nil
}

func (m *Memory) GetOrder(ctx context.Context, userID, orderID string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == orderID && o.UserID == userID {
			return cloneOrder(o), nil
		}
	}
	return models.Order{}, ErrNotFound
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderLine(nil), o.Items...)
	return o
}

// --- authentification ---

func (m *Memory) SignUp(ctx context.Context, email, password string) (models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[email]; exists {
		return models.User{}, nil, ErrEmailTaken
	}
	u := memoryUser{id: uuid.NewString(), hash: hash}
	m.users[email] = u

	user := models.User{ID: u.id, Email: email}
	session, err := m.issue(user)
	if err != nil {
		return models.User{}, nil, err
	}
	return user, session, nil
}

func (m *Memory) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return m.issue(models.User{ID: u.id, Email: email})
}

func (m *Memory) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return errors.New("repository: jeton manquant")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[accessToken] = true
	return nil
}

// issue signe un jeton HS256 au format des jetons Supabase (sub, email, exp).
func (m *Memory) issue(user models.User) (*models.Session, error) {
	expires := m.now().Add(memoryTokenTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  "authenticated",
		"exp":   expires.Unix(),
		"jti":   uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		AccessToken:  token,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Unix(expires.Unix(), 0),
		User:         user,
	}, nil
}
