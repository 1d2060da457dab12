package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/permission"
)

type filterPayload struct {
	ID              string `json:"id"`
	ReferenceNumber string `json:"reference_number"`
	Status          string `json:"status"`
	SendBackComment string `json:"send_back_comment"`
	AuditedExp      string `json:"audited_expenditure"`
}

func filterMatrix() *permission.Matrix {
	return permission.NewMatrix([]permission.Entry{
		{
			Kind:   identity.KindEngagement,
			Status: "report_submitted",
			Role:   identity.RoleAuditFocalPoint,
			Fields: map[string]permission.FieldPermission{
				"send_back_comment": permission.Write,
			},
			DefaultField: permission.Read,
		},
		{
			Kind:   identity.KindEngagement,
			Status: "report_submitted",
			Role:   identity.RoleUNICEFUser,
			Fields: map[string]permission.FieldPermission{
				"send_back_comment": permission.Hidden,
			},
			DefaultField: permission.Read,
		},
	})
}

func TestFilterFields(t *testing.T) {
	payload := filterPayload{
		ID:              "e1",
		ReferenceNumber: "LBN/Partn/A/2026/1",
		Status:          "report_submitted",
		SendBackComment: "please revise findings",
		AuditedExp:      "12000.00",
	}
	matrix := filterMatrix()

	t.Run("readable fields survive", func(t *testing.T) {
		fields, err := filterFields(payload, matrix, identity.KindEngagement, "report_submitted",
			[]identity.Role{identity.RoleAuditFocalPoint})
		require.NoError(t, err)

		assert.Contains(t, fields, "send_back_comment")
		assert.Contains(t, fields, "audited_expenditure")
	})

	t.Run("hidden fields are removed", func(t *testing.T) {
		fields, err := filterFields(payload, matrix, identity.KindEngagement, "report_submitted",
			[]identity.Role{identity.RoleUNICEFUser})
		require.NoError(t, err)

		assert.NotContains(t, fields, "send_back_comment")
		assert.Contains(t, fields, "audited_expenditure")
	})

	t.Run("envelope fields always visible", func(t *testing.T) {
		fields, err := filterFields(payload, matrix, identity.KindEngagement, "partner_contacted",
			[]identity.Role{identity.RoleUNICEFUser})
		require.NoError(t, err)

		assert.Contains(t, fields, "id")
		assert.Contains(t, fields, "reference_number")
		assert.Contains(t, fields, "status")
		assert.NotContains(t, fields, "audited_expenditure")
	})

	t.Run("most permissive role wins", func(t *testing.T) {
		fields, err := filterFields(payload, matrix, identity.KindEngagement, "report_submitted",
			[]identity.Role{identity.RoleUNICEFUser, identity.RoleAuditFocalPoint})
		require.NoError(t, err)

		assert.Contains(t, fields, "send_back_comment")
	})

	t.Run("no roles hides everything but the envelope", func(t *testing.T) {
		fields, err := filterFields(payload, matrix, identity.KindEngagement, "report_submitted", nil)
		require.NoError(t, err)

		assert.Contains(t, fields, "id")
		assert.NotContains(t, fields, "audited_expenditure")
		assert.NotContains(t, fields, "send_back_comment")
	})
}
