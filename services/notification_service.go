package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ichchha07-wish/meal-system/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService sends claim lifecycle messages over SES email
// and SNS SMS, logs every attempt to the notifications table, and
// pushes realtime alerts through the hub. All of it is fire-and-forget
// relative to the claim itself.
type NotificationService struct {
	db   *gorm.DB
	log  *zap.SugaredLogger
	ses  *ses.Client
	sns  *sns.Client
	hub  *RealtimeHub
	from string
}

func NewNotificationService(db *gorm.DB, log *zap.SugaredLogger, hub *RealtimeHub) (*NotificationService, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "ap-south-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &NotificationService{
		db:   db,
		log:  log,
		ses:  ses.NewFromConfig(cfg),
		sns:  sns.NewFromConfig(cfg),
		hub:  hub,
		from: os.Getenv("SES_EMAIL"),
	}, nil
}

// ClaimCreated tells the beneficiary their pickup codes and alerts the
// provider that a claim came in.
func (n *NotificationService) ClaimCreated(claim *models.MealClaim, meal *models.Meal, otp string) {
	var beneficiary models.User
	if err := n.db.First(&beneficiary, claim.BeneficiaryID).Error; err != nil {
		n.log.Errorw("claim notification: beneficiary lookup failed", "claim_id", claim.ID, "error", err)
		return
	}

	subject := fmt.Sprintf("Meal claimed: %s", meal.Name)
	body := fmt.Sprintf(
		"You claimed %d serving(s) of %s.\n\nPickup at: %s\nServing: %s %s\n\nConfirmation code: %s\nShort OTP: %s\n\nShow either code to the provider at pickup.",
		claim.QuantityClaimed, meal.Name, meal.Location,
		meal.ServingDate.Format("2006-01-02"), meal.ServingTime,
		claim.ConfirmationCode, otp,
	)
	n.sendEmail(&beneficiary, subject, body, meal, claim)

	smsText := fmt.Sprintf("Your pickup code for %s is %s (OTP %s)", meal.Name, claim.ConfirmationCode, otp)
	n.sendSMS(&beneficiary, subject, smsText, meal, claim)

	if n.hub != nil {
		n.hub.BroadcastEvent(meal.ProviderID, "claim.created", map[string]any{
			"claim_id":         claim.ID,
			"meal_id":          meal.ID,
			"meal_name":        meal.Name,
			"quantity_claimed": claim.QuantityClaimed,
		})
	}
}

// CollectionVerified confirms pickup to the beneficiary.
func (n *NotificationService) CollectionVerified(claim *models.MealClaim, meal *models.Meal) {
	var beneficiary models.User
	if err := n.db.First(&beneficiary, claim.BeneficiaryID).Error; err != nil {
		n.log.Errorw("collection notification: beneficiary lookup failed", "claim_id", claim.ID, "error", err)
		return
	}

	subject := fmt.Sprintf("Pickup confirmed: %s", meal.Name)
	body := fmt.Sprintf("Your pickup of %s was confirmed by the provider. Enjoy your meal!", meal.Name)
	n.sendEmail(&beneficiary, subject, body, meal, claim)

	if n.hub != nil {
		n.hub.BroadcastEvent(claim.BeneficiaryID, "claim.collected", map[string]any{
			"claim_id":  claim.ID,
			"meal_id":   meal.ID,
			"meal_name": meal.Name,
		})
	}
}

func (n *NotificationService) sendEmail(user *models.User, subject, body string, meal *models.Meal, claim *models.MealClaim) {
	err := n.deliverEmail(user.Email, subject, body)
	n.record(user.ID, models.NotificationEmail, subject, body, meal, claim, err)
}

func (n *NotificationService) sendSMS(user *models.User, subject, text string, meal *models.Meal, claim *models.MealClaim) {
	err := n.deliverSMS(user.PhoneNumber, text)
	n.record(user.ID, models.NotificationSMS, subject, text, meal, claim, err)
}

func (n *NotificationService) deliverEmail(to, subject, body string) error {
	if n.from == "" {
		return errors.New("SES_EMAIL not set")
	}
	_, err := n.ses.SendEmail(context.TODO(), &ses.SendEmailInput{
		Destination: &sestypes.Destination{ToAddresses: []string{to}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body:    &sestypes.Body{Text: &sestypes.Content{Data: aws.String(body)}},
		},
		Source: aws.String(n.from),
	})
	return err
}

func (n *NotificationService) deliverSMS(phone, text string) error {
	if phone == "" {
		return errors.New("user has no phone number")
	}
	// Numbers are stored as 10 national digits.
	countryCode := os.Getenv("SMS_COUNTRY_CODE")
	if countryCode == "" {
		countryCode = "+91"
	}
	_, err := n.sns.Publish(context.TODO(), &sns.PublishInput{
		PhoneNumber: aws.String(countryCode + phone),
		Message:     aws.String(text),
	})
	return err
}

// record writes the notification log row. Dispatch failures land here
// with the error message; they never propagate to the caller.
func (n *NotificationService) record(userID uint, typ, subject, message string, meal *models.Meal, claim *models.MealClaim, sendErr error) {
	row := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Subject: subject,
		Message: message,
	}
	if meal != nil {
		row.RelatedMealID = &meal.ID
	}
	if claim != nil {
		row.RelatedClaimID = &claim.ID
	}
	if sendErr != nil {
		row.ErrorMessage = sendErr.Error()
		n.log.Warnw("notification dispatch failed", "user_id", userID, "type", typ, "error", sendErr)
	} else {
		now := time.Now()
		row.IsSent = true
		row.SentAt = &now
	}
	if err := n.db.Create(row).Error; err != nil {
		n.log.Errorw("notification log write failed", "user_id", userID, "error", err)
	}
}

// List returns the user's notifications, newest first.
func (n *NotificationService) List(userID uint) ([]models.Notification, error) {
	var rows []models.Notification
	err := n.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (n *NotificationService) MarkRead(userID, notificationID uint) error {
	var row models.Notification
	if err := n.db.First(&row, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "notification"}
		}
		return err
	}
	if row.UserID != userID {
		return &PermissionError{Message: "you can only mark your own notifications as read"}
	}
	now := time.Now()
	return n.db.Model(&row).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

// MarkAllRead returns how many notifications were flipped.
func (n *NotificationService) MarkAllRead(userID uint) (int64, error) {
	now := time.Now()
	res := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}
