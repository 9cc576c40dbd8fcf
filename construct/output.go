package construct

import (
	"io"
	"strings"

	"github.com/jamesjuett/lobster-sub011/value"
)

// output is `stream << x` on a std::ostream. It yields the stream so
// insertions chain.
type output struct {
	expr
	str  bool // x is a char pointer, printed up to its terminating NUL.
	subs []Expression
}

func (o *output) UpNext(rt Runtime, inst *Instance) (err error) {
	_, err = pushNext(rt, inst, o.subs)
	return
}

func (o *output) StepForward(rt Runtime, inst *Instance) (err error) {
	v := inst.Child(1).Value

	text := v.String()
	if o.str {
		text = readString(rt, o, v)
	}

	if _, err = io.WriteString(rt.Output(), text); err != nil {
		return
	}

	inst.Object = inst.Child(0).Object
	inst.finish(rt)
	return
}

// readString reads the NUL-terminated characters p points to.
func readString(rt Runtime, c Construct, p value.Value) string {
	switch {
	case !p.IsValid():
		report(rt, UNDEFINED_BEHAVIOR, c, "output of a string through an uninitialized pointer")
		return ""
	case p.Int() == 0:
		report(rt, UNDEFINED_BEHAVIOR, c, "output of a string through a null pointer")
		return ""
	}

	mem := rt.Memory()
	bounds, bounded := p.Bounds()

	var sb strings.Builder
	for at := p.Int(); mem.InBounds(at, 1); at++ {
		if bounded && !bounds.Contains(at, 1) {
			report(rt, UNDEFINED_BEHAVIOR, c, "string is not terminated within its array")
			break
		}
		b := mem.ReadBytes(at, 1)[0]
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String()
}
