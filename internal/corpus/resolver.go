package corpus

import (
	"regexp"
	"strconv"
	"strings"

	"annoreview/internal/domain"
)

// TargetRef is a parsed target_bdi_id of the form <role-letter><turn>_<type>.
type TargetRef struct {
	Role    domain.Role
	TurnID  int
	BDIType domain.BDIType
}

// ResolvedTarget locates the BDI item a target reference names.
type ResolvedTarget struct {
	Role    domain.Role    `json:"role"`
	TurnID  int            `json:"turn"`
	BDIType domain.BDIType `json:"bdi"`
	Text    string         `json:"text"`
}

var targetRefPattern = regexp.MustCompile(`(?i)^([AH])(\d+)_(belief|desire|intention)$`)

// ParseTargetRef parses a raw target reference. Any mismatch (wrong shape,
// unknown role letter, unknown BDI type) returns nil. An unresolvable
// reference is a recognized state, not an error; callers fall back to
// displaying the raw string.
func ParseTargetRef(raw string) *TargetRef {
	m := targetRefPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}

	turnID, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}

	role := domain.RoleHuman
	if strings.EqualFold(m[1], "A") {
		role = domain.RoleAssistant
	}
	return &TargetRef{
		Role:    role,
		TurnID:  turnID,
		BDIType: domain.BDIType(strings.ToLower(m[3])),
	}
}

// ResolveTarget parses raw and locates the named item inside conv: the turn
// with matching id and role, then the normalized item whose type matches.
// Every failure mode degrades to nil; resolution never raises.
func ResolveTarget(conv domain.Conversation, raw string) *ResolvedTarget {
	ref := ParseTargetRef(raw)
	if ref == nil {
		return nil
	}

	for _, turn := range conv.Turns {
		if turn.TurnID != ref.TurnID || !strings.EqualFold(turn.Role, string(ref.Role)) {
			continue
		}
		for _, item := range NormalizeBDI(turn) {
			if strings.EqualFold(string(item.Type), string(ref.BDIType)) {
				return &ResolvedTarget{
					Role:    ref.Role,
					TurnID:  ref.TurnID,
					BDIType: ref.BDIType,
					Text:    item.Text,
				}
			}
		}
		return nil
	}
	return nil
}
