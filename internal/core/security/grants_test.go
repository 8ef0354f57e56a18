package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/apperror"
)

func TestAuthorize(t *testing.T) {
	const client = "0192f0c6-0000-7000-8000-000000000001"
	const other = "0192f0c6-0000-7000-8000-000000000002"

	caller := NewCaller("u2", TenantClient)
	caller.Grants.Add(client, RoleEdit)

	tests := []struct {
		name    string
		caller  Caller
		owner   string
		role    Role
		wantErr string
	}{
		{name: "edit on granted owner", caller: caller, owner: client, role: RoleEdit},
		{name: "view satisfied by any role", caller: caller, owner: client, role: RoleView},
		{name: "missing role", caller: caller, owner: client, role: RoleAdmin, wantErr: apperror.CodeForbidden},
		{name: "no grant for owner", caller: caller, owner: other, role: RoleEdit, wantErr: apperror.CodeForbidden},
		{name: "empty owner", caller: caller, owner: "", role: RoleEdit, wantErr: apperror.CodeForbidden},
		{name: "anonymous", caller: Caller{}, owner: client, role: RoleEdit, wantErr: apperror.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.owner, tt.role)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRequireVendor(t *testing.T) {
	assert.NoError(t, RequireVendor(NewCaller("u1", TenantVendor)))
	assert.True(t, apperror.IsForbidden(RequireVendor(NewCaller("u1", TenantPayer))))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Edit ")
	require.NoError(t, err)
	assert.Equal(t, RoleEdit, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestRoleSet_Sorted(t *testing.T) {
	s := NewRoleSet(RoleEdit, RoleAdd, RoleAdmin)
	assert.Equal(t, []Role{RoleAdd, RoleAdmin, RoleEdit}, s.Sorted())
}
