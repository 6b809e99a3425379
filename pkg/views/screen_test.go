package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeList, "list"},
		{ModeCreate, "create"},
		{ModeEdit, "edit"},
		{ModeDetails, "details"},
		{Mode(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mode.String())
	}
}

func TestScreen_ZeroValueIsList(t *testing.T) {
	var s Screen[item]
	assert.Equal(t, ModeList, s.Mode())
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestScreen_Transitions(t *testing.T) {
	sub := &item{ID: "s1", Name: "Family"}

	tests := []struct {
		name    string
		steps   func(s *Screen[item]) error
		want    Mode
		wantErr error
	}{
		{
			name:  "list to create",
			steps: func(s *Screen[item]) error { return s.Create() },
			want:  ModeCreate,
		},
		{
			name: "details to edit",
			steps: func(s *Screen[item]) error {
				require.NoError(t, s.Details(sub))
				return s.Edit(sub)
			},
			want: ModeEdit,
		},
		{
			name: "create from edit",
			steps: func(s *Screen[item]) error {
				require.NoError(t, s.Edit(sub))
				return s.Create()
			},
			want:    ModeEdit,
			wantErr: ErrInvalidTransition,
		},
		{
			name: "edit from create",
			steps: func(s *Screen[item]) error {
				require.NoError(t, s.Create())
				return s.Edit(sub)
			},
			want:    ModeCreate,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "edit without selection",
			steps:   func(s *Screen[item]) error { return s.Edit(nil) },
			want:    ModeList,
			wantErr: ErrNoSelection,
		},
		{
			name:    "details without selection",
			steps:   func(s *Screen[item]) error { return s.Details(nil) },
			want:    ModeList,
			wantErr: ErrNoSelection,
		},
		{
			name: "create saved then shown",
			steps: func(s *Screen[item]) error {
				require.NoError(t, s.Create())
				return s.Details(sub)
			},
			want: ModeDetails,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen[item]()
			err := tt.steps(s)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, s.Mode())
		})
	}
}

func TestScreen_SelectionIsCopied(t *testing.T) {
	s := NewScreen[item]()
	sub := &item{ID: "s1", Name: "Family"}
	require.NoError(t, s.Edit(sub))

	sub.Name = "changed"
	got, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "Family", got.Name)
}

func TestScreen_ListClearsSelection(t *testing.T) {
	s := NewScreen[item]()
	require.NoError(t, s.Details(&item{ID: "u1"}))
	s.List()

	assert.Equal(t, ModeList, s.Mode())
	_, ok := s.Selected()
	assert.False(t, ok)

	require.NoError(t, s.Create())
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	for _, from := range []Mode{ModeList, ModeCreate, ModeEdit, ModeDetails} {
		assert.True(t, CanTransition(from, ModeList), "%s -> list", from)
	}
	assert.False(t, CanTransition(ModeEdit, ModeCreate))
	assert.False(t, CanTransition(ModeCreate, ModeEdit))
	assert.False(t, CanTransition(ModeCreate, ModeCreate))
	assert.False(t, CanTransition(Mode(9), ModeList))
}
