package tool

import (
	"fmt"
	"math"
)

// MilliMax предел значения в милли-единицах, который принимает прошивка (int32)
const MilliMax = math.MaxInt32

// ToMilli переводит значение в целых единицах (°C, V) в милли-единицы. Дробная часть
// после умножения отбрасывается (усечение к нулю), а не округляется
func ToMilli(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("значение %v не является числом", v)
	}
	milli := math.Trunc(v * 1000)
	if milli > MilliMax || milli < -MilliMax {
		return 0, fmt.Errorf("значение %v вне допустимого диапазона", v)
	}
	return int(milli), nil
}
