// Package email delivers account notification emails.
//
// SendGridSender sends through the SendGrid v3 mail API. LogSender only
// logs the message and is used when no API key is configured.
package email
