package prompt

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/checkin/internal/history"
	"github.com/MikeSquared-Agency/checkin/internal/slot"
)

// CommitmentPlaceholder is replaced by the extracted commitment in the follow-up template.
const CommitmentPlaceholder = "{commitment}"

// Templates configures the parts of the script that vary per deployment.
type Templates struct {
	Openings           map[slot.Slot]string
	FollowUp           string
	TerminationPhrases []string
}

// Input is everything the system instructions are built from.
type Input struct {
	Slot              slot.Slot
	Day               history.DaySlotMap
	Commitment        string
	Quote             string
	CoachingReference string
}

type Composer struct {
	tpl Templates
}

func NewComposer(tpl Templates) *Composer {
	return &Composer{tpl: tpl}
}

// OpeningLine returns the first thing the agent says. Noon and evening calls
// lead with the morning commitment when there is one.
func (c *Composer) OpeningLine(s slot.Slot, commitment string) string {
	commitment = strings.TrimSpace(commitment)
	if s != slot.Morning && commitment != "" {
		return strings.ReplaceAll(c.tpl.FollowUp, CommitmentPlaceholder, commitment)
	}
	return c.tpl.Openings[s]
}

// TerminationPhrases returns the exact phrases the platform hangs up on.
func (c *Composer) TerminationPhrases() []string {
	out := make([]string, len(c.tpl.TerminationPhrases))
	copy(out, c.tpl.TerminationPhrases)
	return out
}

// SystemInstructions assembles the full instruction text for one call.
func (c *Composer) SystemInstructions(in Input) string {
	var sb strings.Builder

	sb.WriteString(roleDefinition)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "## This call\nThis is the %s check-in.\n\n", in.Slot)
	sb.WriteString(daySummary(in))
	sb.WriteString("\n")

	sb.WriteString(callFlow)
	sb.WriteString("\n\n")
	sb.WriteString(protocol(in.Slot))
	sb.WriteString("\n\n")

	if in.Slot == slot.Evening && in.Quote != "" {
		fmt.Fprintf(&sb, "## Quote of the day\n\"%s\"\n\n", in.Quote)
	}

	sb.WriteString(frameworks)
	sb.WriteString("\n\n")
	sb.WriteString(brevityRules)
	sb.WriteString("\n\n")

	if ref := strings.TrimSpace(in.CoachingReference); ref != "" {
		sb.WriteString(coachingReferenceHeader)
		sb.WriteString("\n---\n")
		sb.WriteString(ref)
		sb.WriteString("\n---\n\n")
	}

	fmt.Fprintf(&sb, terminationContract, quotedList(c.tpl.TerminationPhrases))
	if in.Slot == slot.Evening {
		sb.WriteString("\n- Tonight the order is fixed: the 1-10 score, then the quote of the day, then the closing phrase.")
	}

	return sb.String()
}

func protocol(s slot.Slot) string {
	switch s {
	case slot.Noon:
		return noonProtocol
	case slot.Evening:
		return eveningProtocol
	default:
		return morningProtocol
	}
}

// daySummary renders the earlier calls of the day as free text.
func daySummary(in Input) string {
	var sb strings.Builder
	sb.WriteString("## Earlier today\n")

	earlier := 0
	for _, s := range slot.All() {
		if s == in.Slot {
			break
		}
		transcript, ok := in.Day.Transcript(s)
		if !ok {
			fmt.Fprintf(&sb, "- %s call: no record found.\n", capitalize(string(s)))
			continue
		}
		earlier++
		fmt.Fprintf(&sb, "- %s call transcript:\n%s\n", capitalize(string(s)), indent(transcript))
	}

	if in.Slot == slot.Morning {
		sb.WriteString("- This is the first call of the day. There is no earlier commitment.\n")
	} else if earlier == 0 {
		sb.WriteString("- No earlier calls were recorded today. Establish where they are from scratch.\n")
	}

	if c := strings.TrimSpace(in.Commitment); c != "" && in.Slot != slot.Morning {
		fmt.Fprintf(&sb, "\nThis morning's commitment: %s\n", c)
	}
	return sb.String()
}

func quotedList(phrases []string) string {
	lines := make([]string, len(phrases))
	for i, p := range phrases {
		lines[i] = fmt.Sprintf("- \"%s\"", p)
	}
	return strings.Join(lines, "\n")
}

func indent(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
