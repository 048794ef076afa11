package perm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openbfd/bfd/tags"
)

func TestAllowed(t *testing.T) {
	ns := &tags.Namespace{Name: "library", Admins: []string{"mary"}}
	tests := []struct {
		name  string
		actor tags.Actor
		tag   *tags.Tag
		cap   Capability
		want  bool
	}{
		{
			name:  "system admin bypasses everything",
			actor: tags.Actor{ID: "root", SystemAdmin: true},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true},
			cap:   Admin,
			want:  true,
		},
		{
			name:  "public tag readable by anyone",
			actor: tags.Actor{ID: "alice"},
			tag:   &tags.Tag{Namespace: "library", Name: "title"},
			cap:   Read,
			want:  true,
		},
		{
			name:  "public tag writable by anyone",
			actor: tags.Actor{ID: "alice"},
			tag:   &tags.Tag{Namespace: "library", Name: "title"},
			cap:   Write,
			want:  true,
		},
		{
			name:  "private tag denies outsider read",
			actor: tags.Actor{ID: "alice"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true, Readers: []string{"bob"}},
			cap:   Read,
			want:  false,
		},
		{
			name:  "private tag allows whitelisted reader",
			actor: tags.Actor{ID: "bob"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true, Readers: []string{"bob"}},
			cap:   Read,
			want:  true,
		},
		{
			name:  "reader whitelist does not grant write",
			actor: tags.Actor{ID: "bob"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true, Readers: []string{"bob"}},
			cap:   Write,
			want:  false,
		},
		{
			name:  "private tag allows whitelisted user write",
			actor: tags.Actor{ID: "carol"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true, Users: []string{"carol"}},
			cap:   Write,
			want:  true,
		},
		{
			name:  "namespace admin reads private tag with empty whitelist",
			actor: tags.Actor{ID: "mary"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true},
			cap:   Read,
			want:  true,
		},
		{
			name:  "empty whitelist locks out everyone else",
			actor: tags.Actor{ID: "alice"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true},
			cap:   Read,
			want:  false,
		},
		{
			name:  "admin capability requires namespace admin",
			actor: tags.Actor{ID: "carol"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true, Users: []string{"carol"}},
			cap:   Admin,
			want:  false,
		},
		{
			name:  "namespace admin holds admin capability",
			actor: tags.Actor{ID: "mary"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes"},
			cap:   Admin,
			want:  true,
		},
		{
			name:  "namespace admin writes private tag",
			actor: tags.Actor{ID: "mary"},
			tag:   &tags.Tag{Namespace: "library", Name: "notes", Private: true},
			cap:   Write,
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allowed(tt.actor, ns, tt.tag, tt.cap)
			assert.Equal(t, tt.want, got)
		})
	}
}
