// AngelaMos | 2026
// fake.go

package actor

import (
	"context"
	"sort"
	"sync"
)

// Fake is an in-memory Client used by tests and local development. It
// enforces the backend invariants the gateway assumes: immutable product ids,
// price > 0 before publish, admin-only catalog writes, entitlement-gated
// downloads, and a one-owner bootstrap where the second initialize attempt
// fails without changing admin assignment.
type Fake struct {
	mu sync.Mutex

	products     map[string]*Product
	productOrder []string
	categories   map[string]*Category
	profiles     map[string]UserProfile
	roles        map[string]UserRole
	purchases    map[string]map[string]bool
	files        map[string][]byte

	initialized bool
	owner       string

	calls    map[string]int
	failNext map[string][]error
}

func NewFake() *Fake {
	return &Fake{
		products:   make(map[string]*Product),
		categories: make(map[string]*Category),
		profiles:   make(map[string]UserProfile),
		roles:      make(map[string]UserRole),
		purchases:  make(map[string]map[string]bool),
		files:      make(map[string][]byte),
		calls:      make(map[string]int),
		failNext:   make(map[string][]error),
	}
}

var _ Client = (*Fake)(nil)

// FailNext queues an error to be returned by the next call to op, ahead of
// the normal behavior. Queued errors are consumed in order.
func (f *Fake) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext[op] = append(f.failNext[op], err)
}

// Calls reports how many times op has been invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// SeedCategory installs a category without authorization checks.
func (f *Fake) SeedCategory(id, name, icon string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories[id] = &Category{ID: id, Name: name, Icon: icon}
}

// SeedAdmin marks the store initialized with principal as its owner.
func (f *Fake) SeedAdmin(principal string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = true
	f.owner = principal
	f.roles[principal] = RoleAdmin
}

// MarkClaimable marks the admin system initialized with the owner slot
// still unclaimed.
func (f *Fake) MarkClaimable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initialized = true
	f.owner = ""
}

func (f *Fake) begin(op string) error {
	f.calls[op]++
	if queue := f.failNext[op]; len(queue) > 0 {
		err := queue[0]
		f.failNext[op] = queue[1:]
		return err
	}
	return nil
}

func (f *Fake) isAdmin(ctx context.Context) bool {
	principal := PrincipalFromContext(ctx)
	return principal != "" && f.roles[principal] == RoleAdmin
}

func errAnonymous(action string) *Error {
	return NewError(
		CodeUnauthorized,
		"Unauthorized: anonymous callers cannot %s",
		action,
	)
}

var errNotAdmin = NewError(
	CodeUnauthorized,
	"Unauthorized: only store owners and administrators can manage products",
)

func (f *Fake) requireAdmin(ctx context.Context) error {
	if IsAnonymous(ctx) {
		return errAnonymous("manage the store")
	}
	if !f.initialized {
		return NewError(
			CodeUnauthorized,
			"Unauthorized: admin system not initialized",
		)
	}
	if !f.isAdmin(ctx) {
		return errNotAdmin
	}
	return nil
}

func (f *Fake) GetProduct(ctx context.Context, id string) (*Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetProduct"); err != nil {
		return nil, err
	}

	p, ok := f.products[id]
	if !ok {
		return nil, NewError(CodeNotFound, "Product not found")
	}

	clone := *p
	return &clone, nil
}

func (f *Fake) GetProducts(ctx context.Context) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetProducts"); err != nil {
		return nil, err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return nil, err
	}

	return f.snapshotProducts(func(*Product) bool { return true }), nil
}

func (f *Fake) ListStorefrontProducts(
	ctx context.Context,
) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("ListStorefrontProducts"); err != nil {
		return nil, err
	}

	return f.snapshotProducts(func(p *Product) bool {
		return p.IsPublished
	}), nil
}

func (f *Fake) ListStorefrontProductsByCategory(
	ctx context.Context,
	categoryID string,
) ([]Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("ListStorefrontProductsByCategory"); err != nil {
		return nil, err
	}

	if _, ok := f.categories[categoryID]; !ok {
		return nil, NewError(CodeNotFound, "Category not found")
	}

	return f.snapshotProducts(func(p *Product) bool {
		return p.IsPublished && p.CategoryID == categoryID
	}), nil
}

func (f *Fake) snapshotProducts(keep func(*Product) bool) []Product {
	out := make([]Product, 0, len(f.productOrder))
	for _, id := range f.productOrder {
		p := f.products[id]
		if p != nil && keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (f *Fake) GetCategory(
	ctx context.Context,
	id string,
) (*Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetCategory"); err != nil {
		return nil, err
	}

	cat, ok := f.categories[id]
	if !ok {
		return nil, NewError(CodeNotFound, "Category not found")
	}

	clone := *cat
	return &clone, nil
}

func (f *Fake) GetCategories(ctx context.Context) ([]Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetCategories"); err != nil {
		return nil, err
	}

	out := make([]Category, 0, len(f.categories))
	for _, cat := range f.categories {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *Fake) GetCallerUserProfile(
	ctx context.Context,
) (*UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetCallerUserProfile"); err != nil {
		return nil, err
	}

	if IsAnonymous(ctx) {
		return nil, NewError(
			CodeUnauthorized,
			"Unauthorized: profile access requires a signed-in user",
		)
	}

	profile, ok := f.profiles[PrincipalFromContext(ctx)]
	if !ok {
		// A missing profile is a valid state, not an error.
		return nil, nil
	}

	clone := profile
	return &clone, nil
}

func (f *Fake) GetCallerUserRole(ctx context.Context) (UserRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetCallerUserRole"); err != nil {
		return "", err
	}

	if IsAnonymous(ctx) {
		return RoleGuest, nil
	}

	if role, ok := f.roles[PrincipalFromContext(ctx)]; ok {
		return role, nil
	}
	return RoleUser, nil
}

func (f *Fake) IsCallerAdmin(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("IsCallerAdmin"); err != nil {
		return false, err
	}

	return f.isAdmin(ctx), nil
}

func (f *Fake) IsAdminSystemInitialized(
	ctx context.Context,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("IsAdminSystemInitialized"); err != nil {
		return false, err
	}

	return f.initialized, nil
}

func (f *Fake) IsStoreClaimable(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("IsStoreClaimable"); err != nil {
		return false, err
	}

	return f.owner == "", nil
}

func (f *Fake) GetPurchasedProductIDs(
	ctx context.Context,
) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetPurchasedProductIDs"); err != nil {
		return nil, err
	}

	if IsAnonymous(ctx) {
		return []string{}, nil
	}

	owned := f.purchases[PrincipalFromContext(ctx)]
	ids := make([]string, 0, len(owned))
	for _, id := range f.productOrder {
		if owned[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *Fake) GetUserProfile(
	ctx context.Context,
	principal string,
) (*UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetUserProfile"); err != nil {
		return nil, err
	}

	profile, ok := f.profiles[principal]
	if !ok {
		return nil, nil
	}

	clone := profile
	return &clone, nil
}

func (f *Fake) GetAllUserProfiles(
	ctx context.Context,
) ([]PrincipalProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("GetAllUserProfiles"); err != nil {
		return nil, err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return nil, err
	}

	principals := make([]string, 0, len(f.profiles))
	for principal := range f.profiles {
		principals = append(principals, principal)
	}
	sort.Strings(principals)

	out := make([]PrincipalProfile, 0, len(principals))
	for _, principal := range principals {
		out = append(out, PrincipalProfile{
			Principal: principal,
			Profile:   f.profiles[principal],
		})
	}
	return out, nil
}

func (f *Fake) CreateProduct(ctx context.Context, p ProductParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("CreateProduct"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	if p.ID == "" {
		return NewError(CodeInvalid, "product id is required")
	}
	if _, exists := f.products[p.ID]; exists {
		return NewError(CodeConflict, "product id already exists")
	}
	if p.PriceInCents < 0 {
		return NewError(CodeInvalid, "price must not be negative")
	}
	if _, ok := f.categories[p.CategoryID]; !ok {
		return NewError(CodeNotFound, "Category not found")
	}

	f.products[p.ID] = &Product{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		PriceInCents: p.PriceInCents,
		CategoryID:   p.CategoryID,
		IsPublished:  false,
	}
	f.productOrder = append(f.productOrder, p.ID)
	return nil
}

func (f *Fake) UpdateProduct(ctx context.Context, p ProductParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("UpdateProduct"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	existing, ok := f.products[p.ID]
	if !ok {
		return NewError(CodeNotFound, "Product not found")
	}
	if p.PriceInCents < 0 {
		return NewError(CodeInvalid, "price must not be negative")
	}
	if _, ok := f.categories[p.CategoryID]; !ok {
		return NewError(CodeNotFound, "Category not found")
	}

	existing.Title = p.Title
	existing.Author = p.Author
	existing.PriceInCents = p.PriceInCents
	existing.CategoryID = p.CategoryID
	return nil
}

func (f *Fake) DeleteProduct(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("DeleteProduct"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	if _, ok := f.products[id]; !ok {
		return NewError(CodeNotFound, "Product not found")
	}

	delete(f.products, id)
	delete(f.files, id)
	for i, pid := range f.productOrder {
		if pid == id {
			f.productOrder = append(
				f.productOrder[:i],
				f.productOrder[i+1:]...,
			)
			break
		}
	}
	return nil
}

func (f *Fake) SetProductPublished(
	ctx context.Context,
	id string,
	published bool,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("SetProductPublished"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	p, ok := f.products[id]
	if !ok {
		return NewError(CodeNotFound, "Product not found")
	}

	if published && p.PriceInCents <= 0 {
		return NewError(
			CodeInvalid,
			"price must be greater than zero before publishing",
		)
	}

	p.IsPublished = published
	return nil
}

func (f *Fake) UploadProductFile(
	ctx context.Context,
	id string,
	blob *Blob,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("UploadProductFile"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	p, ok := f.products[id]
	if !ok {
		return NewError(CodeNotFound, "Product not found")
	}

	data, err := blob.Bytes(ctx)
	if err != nil {
		return NewError(CodeUnavailable, "file upload not available")
	}

	blob.reportProgress(0)
	blob.reportProgress(100)

	f.files[id] = data
	p.File = &FileRef{
		URL:       "fake://files/" + id,
		SizeBytes: int64(len(data)),
	}
	return nil
}

func (f *Fake) CreateCategory(
	ctx context.Context,
	id, name, icon string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("CreateCategory"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	if _, exists := f.categories[id]; exists {
		return NewError(CodeConflict, "category id already exists")
	}

	f.categories[id] = &Category{ID: id, Name: name, Icon: icon}
	return nil
}

func (f *Fake) DeleteCategory(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("DeleteCategory"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	if _, ok := f.categories[id]; !ok {
		return NewError(CodeNotFound, "Category not found")
	}

	delete(f.categories, id)
	return nil
}

func (f *Fake) SaveCallerUserProfile(
	ctx context.Context,
	profile UserProfile,
) (*UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("SaveCallerUserProfile"); err != nil {
		return nil, err
	}

	if IsAnonymous(ctx) {
		return nil, NewError(
			CodeUnauthorized,
			"Unauthorized: profile access requires a signed-in user",
		)
	}

	f.profiles[PrincipalFromContext(ctx)] = profile
	clone := profile
	return &clone, nil
}

func (f *Fake) AssignCallerUserRole(
	ctx context.Context,
	principal string,
	role UserRole,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("AssignCallerUserRole"); err != nil {
		return err
	}

	if err := f.requireAdmin(ctx); err != nil {
		return err
	}

	f.roles[principal] = role
	return nil
}

func (f *Fake) PurchaseProduct(
	ctx context.Context,
	productID string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("PurchaseProduct"); err != nil {
		return err
	}

	if IsAnonymous(ctx) {
		return NewError(
			CodeUnauthorized,
			"Unauthorized: purchase requires a signed-in user",
		)
	}

	p, ok := f.products[productID]
	if !ok {
		return NewError(CodeNotFound, "Product not found")
	}
	if !p.IsPublished {
		return NewError(CodeInvalid, "Product is not published")
	}

	principal := PrincipalFromContext(ctx)
	if f.purchases[principal] == nil {
		f.purchases[principal] = make(map[string]bool)
	}
	f.purchases[principal][productID] = true
	return nil
}

func (f *Fake) ClaimStoreOwnership(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("ClaimStoreOwnership"); err != nil {
		return err
	}

	if IsAnonymous(ctx) {
		return errAnonymous("claim store ownership")
	}
	if f.owner != "" {
		return NewError(
			CodeConflict,
			"Unauthorized: store ownership already claimed",
		)
	}

	principal := PrincipalFromContext(ctx)
	f.owner = principal
	f.roles[principal] = RoleAdmin
	f.initialized = true
	return nil
}

func (f *Fake) InitializeStore(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("InitializeStore"); err != nil {
		return err
	}

	if IsAnonymous(ctx) {
		return errAnonymous("initialize the store")
	}
	if f.initialized {
		// Second caller must fail gracefully; admin assignment is fixed.
		return NewError(CodeConflict, "Store already initialized")
	}

	principal := PrincipalFromContext(ctx)
	f.initialized = true
	f.owner = principal
	f.roles[principal] = RoleAdmin
	return nil
}

func (f *Fake) SetAdminInitialized(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("SetAdminInitialized"); err != nil {
		return err
	}

	if IsAnonymous(ctx) {
		return errAnonymous("initialize the admin system")
	}

	f.initialized = true
	return nil
}

func (f *Fake) DownloadProductFile(
	ctx context.Context,
	productID string,
) (*Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.begin("DownloadProductFile"); err != nil {
		return nil, err
	}

	p, ok := f.products[productID]
	if !ok {
		return nil, NewError(CodeNotFound, "Product not found")
	}

	principal := PrincipalFromContext(ctx)
	entitled := principal != "" &&
		(f.purchases[principal][productID] || f.roles[principal] == RoleAdmin)
	if !entitled {
		return nil, NewError(
			CodeUnauthorized,
			"Unauthorized: download requires purchase",
		)
	}

	data, ok := f.files[productID]
	if !ok {
		return nil, NewError(CodeUnavailable, "file not available")
	}

	blob := BlobFromBytes(data)
	if p.File != nil {
		blob.directURL = p.File.URL
	}
	return blob, nil
}

func (f *Fake) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.begin("Ping")
}
