package service

import (
	"context"
	"encoding/json"
	"fmt"

	"kidquiz/internal/domain"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"
)

type NotificationService struct {
	repo      *repository.NotificationRepository
	guardians *repository.GuardianRepository
	fcm       *FCMService
}

func NewNotificationService(repo *repository.NotificationRepository, guardians *repository.GuardianRepository, fcm *FCMService) *NotificationService {
	return &NotificationService{repo: repo, guardians: guardians, fcm: fcm}
}

func (s *NotificationService) Notify(guardianID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		GuardianID: guardianID,
		Type:       notifType,
		Title:      title,
		Body:       body,
		Data:       dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(guardianID, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(guardianID uint, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.guardians == nil {
		return
	}
	g, err := s.guardians.GetByID(guardianID)
	if err != nil || g == nil || g.FCMToken == "" {
		return
	}
	strData := make(map[string]string, len(data))
	for k, v := range data {
		strData[k] = fmt.Sprintf("%v", v)
	}
	_ = s.fcm.Send(context.Background(), g.FCMToken, title, body, strData)
}

func (s *NotificationService) NotifyLevelUp(guardianID, kidID uint, level int) error {
	return s.Notify(guardianID, domain.NotifLevelUp, "Level up!",
		fmt.Sprintf("Your kid reached level %d", level),
		map[string]interface{}{"kid_id": kidID, "level": level})
}

func (s *NotificationService) List(guardianID uint, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByGuardianID(guardianID, limit, offset)
}

func (s *NotificationService) MarkRead(id, guardianID uint) error {
	return s.repo.MarkRead(id, guardianID)
}
