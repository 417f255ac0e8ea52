package services

import (
	"context"
	"errors"
	"testing"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/policy"

	"golang.org/x/crypto/bcrypt"
)

func newUserFixture(t *testing.T) (*memStore, UserService) {
	t.Helper()
	store := newMemStore()
	pol, err := policy.Load("")
	if err != nil {
		t.Fatalf("policy.Load() error = %v", err)
	}
	svc := NewUserService(&fakeAuthRepo{s: store}, &fakeCustomerRepo{s: store}, &fakeEmployeeRepo{s: store}, &fakeTx{store: store}, pol)
	svc.(*userService).bcryptCost = bcrypt.MinCost
	return store, svc
}

func addUser(s *memStore, username, role string) int64 {
	id := s.id()
	s.users[id] = models.User{ID: id, Username: username, PasswordHash: "old-hash", Role: role, IsActive: true}
	return id
}

func TestUpdateUser_SelfChangesUsernameAndPassword(t *testing.T) {
	store, svc := newUserFixture(t)
	id := addUser(store, "mother01", "customer")

	user, err := svc.UpdateUser(context.Background(), Actor{UserID: id, Role: "customer"}, id, UpdateUserRequest{
		Username: ptr("  mother02 "),
		Password: ptr("new-secret"),
	})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if user.Username != "mother02" || user.Role != "customer" || !user.IsActive {
		t.Errorf("user = %+v, want renamed active customer", user)
	}
	stored := store.users[id]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-secret")); err != nil {
		t.Errorf("stored password does not match new password: %v", err)
	}
}

func TestUpdateUser_Permissions(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(self, other, admin int64) Actor
		target  func(self, other, admin int64) int64
		req     UpdateUserRequest
		wantErr error
	}{
		{
			name:    "customer edits another account",
			actor:   func(self, _, _ int64) Actor { return Actor{UserID: self, Role: "customer"} },
			target:  func(_, other, _ int64) int64 { return other },
			req:     UpdateUserRequest{Username: ptr("taken-over")},
			wantErr: ErrUserForbidden,
		},
		{
			name:    "employee changes own role",
			actor:   func(_, other, _ int64) Actor { return Actor{UserID: other, Role: "employee"} },
			target:  func(_, other, _ int64) int64 { return other },
			req:     UpdateUserRequest{Role: ptr("admin")},
			wantErr: ErrUserForbidden,
		},
		{
			name:    "customer deactivates self",
			actor:   func(self, _, _ int64) Actor { return Actor{UserID: self, Role: "customer"} },
			target:  func(self, _, _ int64) int64 { return self },
			req:     UpdateUserRequest{IsActive: ptr(false)},
			wantErr: ErrUserForbidden,
		},
		{
			name:    "admin demotes self",
			actor:   func(_, _, admin int64) Actor { return Actor{UserID: admin, Role: "admin"} },
			target:  func(_, _, admin int64) int64 { return admin },
			req:     UpdateUserRequest{Role: ptr("employee")},
			wantErr: ErrSelfModify,
		},
		{
			name:    "admin assigns unknown role",
			actor:   func(_, _, admin int64) Actor { return Actor{UserID: admin, Role: "admin"} },
			target:  func(self, _, _ int64) int64 { return self },
			req:     UpdateUserRequest{Role: ptr("superuser")},
			wantErr: ErrValidation,
		},
		{
			name:    "short password",
			actor:   func(self, _, _ int64) Actor { return Actor{UserID: self, Role: "customer"} },
			target:  func(self, _, _ int64) int64 { return self },
			req:     UpdateUserRequest{Password: ptr("12345")},
			wantErr: ErrValidation,
		},
		{
			name:    "short username",
			actor:   func(self, _, _ int64) Actor { return Actor{UserID: self, Role: "customer"} },
			target:  func(self, _, _ int64) int64 { return self },
			req:     UpdateUserRequest{Username: ptr("ab")},
			wantErr: ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, svc := newUserFixture(t)
			self := addUser(store, "mother01", "customer")
			other := addUser(store, "nurse01", "employee")
			admin := addUser(store, "root", "admin")
			before := copyMap(store.users)

			_, err := svc.UpdateUser(context.Background(), tt.actor(self, other, admin), tt.target(self, other, admin), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateUser() error = %v, want %v", err, tt.wantErr)
			}
			for id, u := range before {
				if store.users[id] != u {
					t.Errorf("user %d changed to %+v", id, store.users[id])
				}
			}
		})
	}
}

func TestUpdateUser_AdminManagesOthers(t *testing.T) {
	store, svc := newUserFixture(t)
	admin := addUser(store, "root", "admin")
	nurse := addUser(store, "nurse01", "employee")

	user, err := svc.UpdateUser(context.Background(), Actor{UserID: admin, Role: "admin"}, nurse, UpdateUserRequest{
		Role:     ptr(" Admin "),
		IsActive: ptr(false),
	})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if user.Role != "admin" || user.IsActive {
		t.Errorf("user = %+v, want inactive admin", user)
	}
	if stored := store.users[nurse]; stored.Role != "admin" || stored.IsActive || stored.PasswordHash != "old-hash" {
		t.Errorf("stored user = %+v, want inactive admin with password kept", stored)
	}
}

func TestUpdateUser_DuplicateUsername(t *testing.T) {
	store, svc := newUserFixture(t)
	id := addUser(store, "mother01", "customer")
	addUser(store, "mother02", "customer")

	_, err := svc.UpdateUser(context.Background(), Actor{UserID: id, Role: "customer"}, id, UpdateUserRequest{
		Username: ptr("mother02"),
		Password: ptr("new-secret"),
	})
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("UpdateUser() error = %v, want ErrUsernameExists", err)
	}
	if stored := store.users[id]; stored.Username != "mother01" || stored.PasswordHash != "old-hash" {
		t.Errorf("stored user = %+v, want unchanged", stored)
	}
}

func TestUpdateUser_UnknownUser(t *testing.T) {
	store, svc := newUserFixture(t)
	admin := addUser(store, "root", "admin")

	if _, err := svc.UpdateUser(context.Background(), Actor{UserID: admin, Role: "admin"}, 999, UpdateUserRequest{Username: ptr("ghost")}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("UpdateUser() error = %v, want ErrUserNotFound", err)
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store, svc := newUserFixture(t)
	admin := addUser(store, "root", "admin")
	mother := addUser(store, "mother01", "customer")
	customerID := store.addCustomer("Chen Jing")
	c := store.customers[customerID]
	c.UserID = &mother
	store.customers[customerID] = c

	actor := Actor{UserID: admin, Role: "admin"}
	if err := svc.DeleteUser(ctx, actor, admin); !errors.Is(err, ErrSelfDelete) || !errors.Is(err, ErrConflict) {
		t.Errorf("DeleteUser(self) error = %v, want ErrSelfDelete", err)
	}
	if err := svc.DeleteUser(ctx, actor, mother); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, ok := store.users[mother]; ok {
		t.Error("user still stored after delete")
	}
	profile, ok := store.customers[customerID]
	if !ok || profile.UserID != nil {
		t.Errorf("customer profile = %+v, want kept with user_id cleared", profile)
	}
	if err := svc.DeleteUser(ctx, actor, mother); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("DeleteUser(again) error = %v, want ErrUserNotFound", err)
	}
}

func TestGetUserByID_IncludesProfile(t *testing.T) {
	ctx := context.Background()
	store, svc := newUserFixture(t)
	nurse := addUser(store, "nurse01", "employee")
	admin := addUser(store, "root", "admin")
	employeeID := store.addEmployee("Zhao Lei")
	e := store.employees[employeeID]
	e.UserID = &nurse
	store.employees[employeeID] = e

	detail, err := svc.GetUserByID(ctx, nurse)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if detail.Employee == nil || detail.Employee.ID != employeeID || detail.Customer != nil {
		t.Errorf("detail = %+v, want employee profile %d only", detail, employeeID)
	}

	bare, err := svc.GetUserByID(ctx, admin)
	if err != nil {
		t.Fatalf("GetUserByID(admin) error = %v", err)
	}
	if bare.Customer != nil || bare.Employee != nil {
		t.Errorf("admin detail = %+v, want no profiles", bare)
	}

	if _, err := svc.GetUserByID(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestGetUsers_Filters(t *testing.T) {
	store, svc := newUserFixture(t)
	addUser(store, "mother01", "customer")
	addUser(store, "mother02", "customer")
	addUser(store, "nurse01", "employee")

	users, total, err := svc.GetUsers(context.Background(), models.UserFilters{Role: ptr("customer")})
	if err != nil {
		t.Fatalf("GetUsers() error = %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Errorf("users = %d of %d, want 2 of 2", len(users), total)
	}
}
