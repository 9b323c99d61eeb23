package fusex

/*------------------------------------------------------------------
 *
 * Purpose:	Tune a receiver through hamlib.
 *
 * Description:	Serial CAT control only.  8N1, no handshake, which is
 *		what almost every rig wants.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"

	"github.com/xylo04/goHamlib"
)

type RigTuner struct {
	rig   *goHamlib.Rig
	model int
}

func OpenRigTuner(model int, port string, baud int) (*RigTuner, error) {
	var rig = &goHamlib.Rig{} //nolint:exhaustruct

	var initErr = rig.Init(goHamlib.RigModelID(model))
	if initErr != nil {
		return nil, fmt.Errorf("hamlib rig model %d: %w", model, initErr)
	}

	var p = goHamlib.Port{ //nolint:exhaustruct
		RigPortType: goHamlib.RigPortSerial,
		Portname:    port,
		Baudrate:    baud,
		Databits:    8,
		Stopbits:    1,
		Parity:      goHamlib.ParityNone,
		Handshake:   goHamlib.HandshakeNone,
	}

	var portErr = rig.SetPort(p)
	if portErr != nil {
		rig.Cleanup()
		return nil, fmt.Errorf("hamlib port %s: %w", port, portErr)
	}

	var openErr = rig.Open()
	if openErr != nil {
		rig.Cleanup()
		return nil, fmt.Errorf("hamlib can't open rig on %s: %w", port, openErr)
	}

	return &RigTuner{rig: rig, model: model}, nil
}

// SetFreq tunes the current VFO, in Hz.
func (r *RigTuner) SetFreq(hz int) error {
	return r.rig.SetFreq(goHamlib.VFOCurrent, float64(hz))
}

func (r *RigTuner) Close() {
	r.rig.Close()
	r.rig.Cleanup()
}
