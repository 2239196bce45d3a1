package role

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"verdict/pkg/domain"
)

type DefaultsSuite struct {
	suite.Suite
}

func TestDefaultsSuite(t *testing.T) {
	suite.Run(t, new(DefaultsSuite))
}

// TestHasDefaultAccess covers the role tier table and its union semantics.
func (s *DefaultsSuite) TestHasDefaultAccess() {
	tests := []struct {
		name  string
		roles []string
		op    domain.OperationType
		want  bool
	}{
		{"super_admin may manage", []string{SuperAdmin}, domain.OperationManage, true},
		{"admin may delete", []string{Admin}, domain.OperationDelete, true},
		{"manager may approve", []string{Manager}, domain.OperationApprove, true},
		{"manager may not delete", []string{Manager}, domain.OperationDelete, false},
		{"manager may not export", []string{Manager}, domain.OperationExport, false},
		{"user may read", []string{User}, domain.OperationRead, true},
		{"user may not write", []string{User}, domain.OperationWrite, false},
		{"viewer may read", []string{Viewer}, domain.OperationRead, true},
		{"viewer may not approve", []string{Viewer}, domain.OperationApprove, false},
		{"strongest role in set wins", []string{Viewer, Manager}, domain.OperationWrite, true},
		{"unknown role grants nothing", []string{"intern"}, domain.OperationRead, false},
		{"empty role set grants nothing", nil, domain.OperationRead, false},
		{"empty operation grants nothing", []string{SuperAdmin}, "", false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, HasDefaultAccess(tt.roles, tt.op))
		})
	}
}
