package notifications

import (
	"context"
	"errors"
	"log"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

// EmailSender delivers email copies of notifications.
type EmailSender interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// SMSSender delivers SMS copies of notifications.
type SMSSender interface {
	Send(ctx context.Context, msg *SMSMessage) error
}

// Recipient is the contact info lookup used for channel fan-out.
type Recipient struct {
	Email *string
	Phone *string
}

type RecipientDirectory interface {
	GetRecipient(ctx context.Context, userID int64) (*Recipient, error)
}

type Service interface {
	// Notify persists an in-app notification and fans out to email when
	// the recipient has an address. It never returns an error to the
	// caller; delivery problems are logged.
	Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string)

	GetNotifications(ctx context.Context, userID int64, unreadOnly bool, page, size int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, notificationID, userID int64) error
	CleanupOldNotifications(ctx context.Context, olderThan time.Duration) error
}

type service struct {
	repo       Repository
	recipients RecipientDirectory
	email      EmailSender
	sms        SMSSender
}

func NewService(repo Repository, recipients RecipientDirectory, email EmailSender, sms SMSSender) Service {
	return &service{
		repo:       repo,
		recipients: recipients,
		email:      email,
		sms:        sms,
	}
}

func (s *service) Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string) {
	notification := &Notification{
		UserID:  recipientID,
		Kind:    kind,
		Message: message,
	}
	if referenceID > 0 {
		notification.ReferenceID = &referenceID
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("Failed to store notification for user %d: %v", recipientID, err)
		return
	}

	RecordNotification(kind)
	s.fanOut(ctx, recipientID, kind, message)
}

// fanOut delivers a copy over email or SMS. In-app is already stored,
// so channel failures only get logged.
func (s *service) fanOut(ctx context.Context, recipientID int64, kind, message string) {
	if s.recipients == nil {
		return
	}

	recipient, err := s.recipients.GetRecipient(ctx, recipientID)
	if err != nil {
		log.Printf("Failed to look up recipient %d: %v", recipientID, err)
		return
	}

	switch {
	case recipient.Email != nil && s.email != nil:
		err = s.email.Send(ctx, &EmailMessage{
			To:      *recipient.Email,
			Subject: emailSubject(kind),
			Body:    message,
		})
	case recipient.Phone != nil && s.sms != nil:
		err = s.sms.Send(ctx, &SMSMessage{To: *recipient.Phone, Body: message})
	default:
		return
	}
	if err != nil {
		log.Printf("Failed to deliver %s notification to user %d: %v", kind, recipientID, err)
	}
}

func (s *service) GetNotifications(ctx context.Context, userID int64, unreadOnly bool, page, size int) ([]*Notification, error) {
	if size <= 0 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return s.repo.ListForUser(ctx, userID, unreadOnly, size, page*size)
}

func (s *service) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

func (s *service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) DeleteNotification(ctx context.Context, notificationID, userID int64) error {
	return s.repo.Delete(ctx, notificationID, userID)
}

func (s *service) CleanupOldNotifications(ctx context.Context, olderThan time.Duration) error {
	deleted, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("Cleaned up %d old notifications", deleted)
	}
	return nil
}

func emailSubject(kind string) string {
	switch kind {
	case KindMatch:
		return "You have a new match!"
	case KindDateProposal:
		return "Someone wants to join your date"
	case KindProposalAccepted:
		return "Your date proposal was accepted"
	case KindProposalRejected:
		return "Update on your date proposal"
	case KindProposalCountered:
		return "A different time was suggested for your date"
	case KindMeetupJoin:
		return "Someone joined your meetup"
	}
	return "You have a new notification"
}
