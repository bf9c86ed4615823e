package postconstruct

import "runtime"

// goYield is the scheduling primitive GoscheduleYielder.Yield calls once
// its ctx check passes.
func goYield() {
	runtime.Gosched()
}
