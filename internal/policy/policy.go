package policy

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

const Wildcard = "*"

// Permissions checked by the router.
const (
	OrdersRead          = "orders:read"
	OrdersWrite         = "orders:write"
	PurchaseOrdersRead  = "purchase_orders:read"
	PurchaseOrdersWrite = "purchase_orders:write"
	SalariesRead        = "salaries:read"
	SalariesWrite       = "salaries:write"
	CustomersRead       = "customers:read"
	CustomersWrite      = "customers:write"
	EmployeesRead       = "employees:read"
	EmployeesWrite      = "employees:write"
	SuppliersRead       = "suppliers:read"
	SuppliersWrite      = "suppliers:write"
	IngredientsRead     = "ingredients:read"
	IngredientsWrite    = "ingredients:write"
	DishesRead          = "dishes:read"
	DishesWrite         = "dishes:write"
	MenusRead           = "menus:read"
	MenusWrite          = "menus:write"
	UsersRead           = "users:read"
	UsersWrite          = "users:write"
	TransactionsRead    = "transactions:read"
	TransactionsWrite   = "transactions:write"
	SystemRead          = "system:read"
)

var permissionPattern = regexp.MustCompile(`^[a-z_]+:(read|write)$`)

type policyFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// Policy maps roles to the permissions they hold.
type Policy struct {
	roles map[string]map[string]struct{}
}

// Load reads the policy at path, or the embedded default when path is empty.
func Load(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultPolicy)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML policy. Unknown keys and malformed permissions are rejected.
func Parse(data []byte) (*Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file policyFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if len(file.Roles) == 0 {
		return nil, fmt.Errorf("parse policy: no roles defined")
	}

	p := &Policy{roles: make(map[string]map[string]struct{}, len(file.Roles))}
	for role, perms := range file.Roles {
		role = strings.TrimSpace(role)
		if role == "" {
			return nil, fmt.Errorf("parse policy: empty role name")
		}
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			perm = strings.TrimSpace(perm)
			if perm != Wildcard && !permissionPattern.MatchString(perm) {
				return nil, fmt.Errorf("parse policy: role %s: invalid permission %q", role, perm)
			}
			set[perm] = struct{}{}
		}
		p.roles[role] = set
	}
	return p, nil
}

// Allows reports whether role holds permission. A write grant covers the matching read.
func (p *Policy) Allows(role, permission string) bool {
	set, ok := p.roles[role]
	if !ok {
		return false
	}
	if _, ok := set[Wildcard]; ok {
		return true
	}
	if _, ok := set[permission]; ok {
		return true
	}
	if resource, ok := strings.CutSuffix(permission, ":read"); ok {
		_, ok := set[resource+":write"]
		return ok
	}
	return false
}

// Permissions lists the grants of role, sorted.
func (p *Policy) Permissions(role string) []string {
	set := p.roles[role]
	perms := make([]string, 0, len(set))
	for perm := range set {
		perms = append(perms, perm)
	}
	sort.Strings(perms)
	return perms
}

// Roles returns a copy of the whole policy.
func (p *Policy) Roles() map[string][]string {
	out := make(map[string][]string, len(p.roles))
	for role := range p.roles {
		out[role] = p.Permissions(role)
	}
	return out
}

// HasRole reports whether the policy knows role.
func (p *Policy) HasRole(role string) bool {
	_, ok := p.roles[role]
	return ok
}
