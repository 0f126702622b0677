// Package duedate реализует расчёт даты платежа по абонементу:
// ровно 30 календарных дней от даты начала членства.
//
// Арифметика выполняется в пространстве абсолютных номеров дней
// (пролептический григорианский календарь), а не через прибавление
// месяцев, поэтому переходы через границы месяцев и годов, а также
// високосные годы обрабатываются без особых случаев.
package duedate

import "fmt"

// PaymentTermDays — длина платёжного периода в днях.
const PaymentTermDays = 30

// Date представляет календарную дату (год, месяц, день).
// Значение неизменяемое: все операции возвращают новую дату.
type Date struct {
	Year  int
	Month int
	Day   int
}

// InvalidDateError возвращается, когда компоненты даты не образуют
// реальную календарную дату (например, месяц 13 или 30 февраля).
type InvalidDateError struct {
	Year  int
	Month int
	Day   int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid calendar date: %04d-%02d-%02d", e.Year, e.Month, e.Day)
}

// New создает Date, проверяя корректность компонентов.
// Допустимы года начиная с 1.
func New(year, month, day int) (Date, error) {
	d := Date{Year: year, Month: month, Day: day}
	if !d.IsValid() {
		return Date{}, &InvalidDateError{Year: year, Month: month, Day: day}
	}
	return d, nil
}

// Parse разбирает дату в формате "2006-01-02" и проверяет её корректность.
func Parse(s string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("malformed date %q: want format 2006-01-02", s)
	}
	var year, month, day int
	if _, err := fmt.Sscanf(s, "%4d-%2d-%2d", &year, &month, &day); err != nil {
		return Date{}, fmt.Errorf("malformed date %q: %w", s, err)
	}
	return New(year, month, day)
}

// IsValid сообщает, является ли значение реальной календарной датой.
func (d Date) IsValid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 {
		return false
	}
	return d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}

// String возвращает дату в формате "2006-01-02".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsLeapYear реализует григорианское правило високосного года:
// год делится на 4, кроме столетий, не делящихся на 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth возвращает количество дней в месяце с учётом високосного года.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// DayNumber возвращает абсолютный номер дня: количество дней,
// прошедших с 1970-01-01 (может быть отрицательным).
func (d Date) DayNumber() int {
	y := d.Year
	if d.Month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	var doy int
	if d.Month > 2 {
		doy = (153*(d.Month-3)+2)/5 + d.Day - 1
	} else {
		doy = (153*(d.Month+9)+2)/5 + d.Day - 1
	}
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// FromDayNumber восстанавливает дату по абсолютному номеру дня.
// Обратная операция к DayNumber.
func FromDayNumber(n int) Date {
	z := n + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	month := mp + 3
	if mp >= 10 {
		month = mp - 9
	}
	if month <= 2 {
		y++
	}
	return Date{Year: y, Month: month, Day: day}
}

// FromStart вычисляет дату платежа: ровно PaymentTermDays календарных
// дней после даты начала членства. Для некорректной входной даты
// возвращает *InvalidDateError; других режимов отказа нет.
func FromStart(start Date) (Date, error) {
	if !start.IsValid() {
		return Date{}, &InvalidDateError{Year: start.Year, Month: start.Month, Day: start.Day}
	}
	return FromDayNumber(start.DayNumber() + PaymentTermDays), nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
