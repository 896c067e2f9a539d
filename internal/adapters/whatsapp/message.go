package whatsapp

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah formats an amount as "Rp 1.500.000"
func FormatRupiah(amount int64) string {
	return "Rp " + idPrinter.Sprintf("%d", amount)
}

// FormatDate formats a date as "10 Maret 2025"
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// PaymentReminder builds the reminder text sent to a tenant
func PaymentReminder(tenantName, roomNumber string, amount int64, dueDate time.Time) string {
	return fmt.Sprintf(`Halo %s,

Ini pengingat pembayaran kos kamar %s.
Total: %s
Jatuh tempo: %s

Mohon segera lakukan pembayaran sebelum tanggal jatuh tempo ya 😊

Terima kasih!`, tenantName, roomNumber, FormatRupiah(amount), FormatDate(dueDate))
}
