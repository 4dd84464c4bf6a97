package interp

import (
	"dalvik/frame"
	"dalvik/object"
)

func opNop(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	return nil, false, nil
}

func opMove(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), fr.Get(int(ins.B)))
	return nil, false, nil
}

func opMoveWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opMoveResult(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), fr.Return)
	return nil, false, nil
}

func opMoveResultWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.SetWide(int(ins.A), fr.Return, fr.ReturnHigh)
	return nil, false, nil
}

func opMoveResultObject(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), fr.Return)
	return nil, false, nil
}

// opMoveException is the only opcode permitted to read the frame's
// pending-exception slot; reading it also clears the slot.
func opMoveException(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	exc := fr.Exception
	fr.Exception = nil
	fr.Set(int(ins.A), object.Ref32(exc))
	return nil, false, nil
}

func opReturnVoid(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	th.PopFrame()
	if caller := th.Current(); caller != nil {
		caller.Return = object.NullValue()
	}
	return nil, true, nil
}

func opReturn(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	v := fr.Get(int(ins.A))
	th.PopFrame()
	if caller := th.Current(); caller != nil {
		caller.Return = v
	}
	return nil, true, nil
}

func opReturnWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.A))
	th.PopFrame()
	if caller := th.Current(); caller != nil {
		caller.Return = lo
		caller.ReturnHigh = hi
	}
	return nil, true, nil
}

func opReturnObject(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	v := fr.Get(int(ins.A))
	th.PopFrame()
	if caller := th.Current(); caller != nil {
		caller.Return = v
	}
	return nil, true, nil
}
