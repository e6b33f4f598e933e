package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// BookingEmailData carries everything the confirmation email renders.
type BookingEmailData struct {
	To            string
	UserName      string
	RoomType      string
	NumberOfRooms int
	CheckinDate   string
	CheckoutDate  string
	TotalPrice    float64
	DepositPaid   float64
	IsDeposit     bool
}

// SendBookingConfirmedEmail sends the post-allocation confirmation email.
// It is strictly best-effort: callers fire it after the reservation rows are
// committed and ignore the result beyond logging.
func SendBookingConfirmedEmail(data BookingEmailData) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := os.Getenv("SMTP_FROM_NAME")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] booking confirmed to:%s rooms:%d type:%s %s -> %s",
			data.To, data.NumberOfRooms, data.RoomType, data.CheckinDate, data.CheckoutDate)
		return nil
	}

	paymentStatus := "Fully Paid"
	remaining := 0.0
	if data.IsDeposit {
		paymentStatus = "Deposit Paid (20%)"
		remaining = data.TotalPrice * 0.8
	}

	from := fmt.Sprintf("%s <%s>", fromName, smtpUser)
	to := []string{data.To}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	subject := "Your booking at Horizon Hotel is confirmed"
	boundary := "----=_BOOKING_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your booking is confirmed.\n\n"+
			"Room type: %s\n"+
			"Rooms: %d\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Total: %.2f\n"+
			"Payment: %s\n"+
			"Remaining amount: %.2f\n\n"+
			"We look forward to welcoming you.\n",
		data.UserName, data.RoomType, data.NumberOfRooms,
		data.CheckinDate, data.CheckoutDate, data.TotalPrice, paymentStatus, remaining,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Booking confirmed</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
table { width:100%%; border-collapse:collapse; }
td { padding:6px 0; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Booking confirmed</h2>
    <p>Hi %s,</p>
    <table>
      <tr><td>Room type</td><td><strong>%s</strong></td></tr>
      <tr><td>Rooms</td><td>%d</td></tr>
      <tr><td>Check-in</td><td>%s</td></tr>
      <tr><td>Check-out</td><td>%s</td></tr>
      <tr><td>Total</td><td>%.2f</td></tr>
      <tr><td>Payment</td><td>%s</td></tr>
      <tr><td>Remaining</td><td>%.2f</td></tr>
    </table>
    <p>We look forward to welcoming you.</p>
  </div>
</div>
</body>
</html>`,
		data.UserName, data.RoomType, data.NumberOfRooms,
		data.CheckinDate, data.CheckoutDate, data.TotalPrice, paymentStatus, remaining,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", data.To))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("Failed to send booking email to %s: %v", data.To, err)
		return err
	}

	log.Printf("Booking email sent to %s", data.To)
	return nil
}
