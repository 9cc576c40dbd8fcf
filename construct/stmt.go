package construct

// block runs its statements in order.
type block struct {
	base
	stmts []Construct
}

func (b *block) UpNext(rt Runtime, inst *Instance) error {
	if pushed, err := pushNext(rt, inst, b.stmts); pushed || err != nil {
		return err
	}
	inst.finish(rt)
	return nil
}

// exprStmt evaluates an expression for its side effects.
type exprStmt struct {
	base
	subs []Expression
}

func (s *exprStmt) UpNext(rt Runtime, inst *Instance) error {
	if pushed, err := pushNext(rt, inst, s.subs); pushed || err != nil {
		return err
	}
	inst.finish(rt)
	return nil
}

// declStmt initializes local objects in declaration order.
type declStmt struct {
	base
	inits []*Init
}

func (s *declStmt) UpNext(rt Runtime, inst *Instance) error {
	if pushed, err := pushNext(rt, inst, s.inits); pushed || err != nil {
		return err
	}
	inst.finish(rt)
	return nil
}

type ifStmt struct {
	base
	cond Expression
	then Construct
	els  Construct // May be nil.
}

func (s *ifStmt) UpNext(rt Runtime, inst *Instance) (err error) {
	switch inst.Step {
	case STEP_START:
		inst.Step = STEP_CHECK_COND
		_, err = CreateAndPushInstance(rt, s.cond, inst)
	case STEP_BRANCH:
		inst.finish(rt)
	}
	return
}

func (s *ifStmt) StepForward(rt Runtime, inst *Instance) (err error) {
	branch := s.els
	if inst.Child(0).Value.Bool() {
		branch = s.then
	}
	// The condition is a full expression of its own.
	inst.releaseTemporaries(rt)
	if branch == nil {
		inst.finish(rt)
		return
	}
	inst.Step = STEP_BRANCH
	_, err = CreateAndPushInstance(rt, branch, inst)
	return
}

// loop is a while, do-while or for statement. Each iteration drops the
// instances of the previous one.
type loop struct {
	base
	init   Construct // for only; may be nil.
	cond   Expression
	post   Expression // for only; may be nil.
	body   Construct
	doLoop bool
}

func (l *loop) UpNext(rt Runtime, inst *Instance) (err error) {
	switch inst.Step {
	case STEP_START:
		switch {
		case l.doLoop:
			inst.Step = STEP_BODY
			_, err = CreateAndPushInstance(rt, l.body, inst)
		case l.init != nil:
			inst.Step = STEP_COND
			_, err = CreateAndPushInstance(rt, l.init, inst)
		default:
			inst.Step = STEP_COND
			return l.UpNext(rt, inst)
		}
	case STEP_COND:
		inst.Step = STEP_CHECK_COND
		if l.cond != nil {
			_, err = CreateAndPushInstance(rt, l.cond, inst)
		}
	case STEP_BODY:
		// Body done, or continued.
		if l.post != nil {
			inst.Step = STEP_POST
			_, err = CreateAndPushInstance(rt, l.post, inst)
			return
		}
		inst.restart(rt)
		inst.Step = STEP_COND
		return l.UpNext(rt, inst)
	case STEP_POST:
		inst.restart(rt)
		inst.Step = STEP_COND
		return l.UpNext(rt, inst)
	}
	return
}

func (l *loop) StepForward(rt Runtime, inst *Instance) (err error) {
	if l.cond != nil && !inst.Last().Value.Bool() {
		inst.finish(rt)
		return
	}
	inst.restart(rt)
	inst.Step = STEP_BODY
	_, err = CreateAndPushInstance(rt, l.body, inst)
	return
}

// jump is a break or continue out of the innermost enclosing loop.
type jump struct {
	base
	target *loop
	leave  bool // break
}

func (j *jump) StepForward(rt Runtime, inst *Instance) error {
	at := inst.Parent
	for at != nil && at.Construct != Construct(j.target) {
		at = at.Parent
	}
	if at == nil {
		inst.finish(rt)
		return nil
	}

	unwind(rt, inst, at)
	if j.leave {
		at.finish(rt)
	} else {
		at.Step = STEP_BODY
	}
	return nil
}

// nullStmt is `;`.
type nullStmt struct {
	base
}
