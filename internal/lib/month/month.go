// Package month содержит календарную арифметику для проекции дат продления.
//
// Политика для коротких месяцев — прижатие к концу месяца: каждое вхождение
// считается от исходной даты, а день ограничивается длиной целевого месяца.
// 31 января + 1 месяц = 28/29 февраля, + 2 месяца = 31 марта.
package month

import "time"

// Date отбрасывает время суток и возвращает полночь UTC той же календарной даты,
// что и t в своей локации.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn возвращает количество дней в месяце.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths сдвигает дату на n календарных месяцев с прижатием дня к концу месяца.
func AddMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(total, 12)
	m := time.Month(total - floorDiv(total, 12)*12 + 1)
	day := min(t.Day(), DaysIn(year, m))
	return time.Date(year, m, day, 0, 0, 0, 0, time.UTC)
}

// AddYears сдвигает дату на n лет; 29 февраля в невисокосный год становится 28 февраля.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// Between возвращает количество календарных месяцев от from до to без учёта дней.
// Результат отрицателен, если to раньше from.
func Between(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
