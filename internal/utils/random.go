package utils

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/schedule"
	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"
)

var firstNames = []string{
	"Amina", "Wanjiru", "Otieno", "Achieng", "Kamau", "Njeri", "Mutua", "Chebet", "Kiprop", "Atieno",
	"Baraka", "Zawadi", "Imani", "Juma", "Nyambura", "Wafula", "Akinyi", "Mwangi", "Halima", "Omondi",
}

var lastNames = []string{
	"Mwangi", "Otieno", "Kariuki", "Odhiambo", "Wambui", "Kipchoge", "Mutiso", "Njoroge", "Ochieng", "Wekesa",
}

// Han-script names show up among visiting clinicians; usernames for those go through pinyin.
var hanSurnames = []string{"王", "李", "张", "刘", "陈", "杨", "赵", "黄"}
var hanNameCharacters = []string{"伟", "芳", "敏", "静", "丽", "杰", "明", "华", "平", "欣"}

func GenerateRandomFullName() string {
	if rand.Intn(10) == 0 {
		name := hanSurnames[rand.Intn(len(hanSurnames))]
		for i := 0; i < rand.Intn(2)+1; i++ {
			name += hanNameCharacters[rand.Intn(len(hanNameCharacters))]
		}
		return name
	}
	return firstNames[rand.Intn(len(firstNames))] + " " + lastNames[rand.Intn(len(lastNames))]
}

var digits = "0123456789"

// GenerateUsernameFromFullName lowercases the latin letters of fullName, romanizes Han
// characters and appends up to three random digits.
func GenerateUsernameFromFullName(fullName string) string {
	var b strings.Builder

	hasHan := false
	for _, r := range fullName {
		if unicode.Is(unicode.Han, r) {
			hasHan = true
			break
		}
	}

	if hasHan {
		for _, p := range pinyin.LazyConvert(fullName, nil) {
			b.WriteString(p)
		}
	} else {
		for _, part := range strings.Fields(fullName) {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			for _, r := range strings.ToLower(part) {
				if r >= 'a' && r <= 'z' {
					b.WriteRune(r)
				}
			}
		}
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		b.WriteByte(digits[rand.Intn(len(digits))])
	}

	return b.String()
}

var roles = []domain.Role{
	domain.RolePatient,
	domain.RoleDoctor,
	domain.RoleNurse,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

func GenerateRandomUser(password string, emailDomainName string, role domain.Role) (*domain.User, error) {
	fullName := GenerateRandomFullName()
	username := GenerateUsernameFromFullName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
	}

	return user, nil
}

var specialties = map[domain.ProviderKind][]string{
	domain.ProviderKindDoctor: {"General Practitioner", "Cardiology", "Pediatrics", "Orthopedics", "Internal Medicine", "Otolaryngology"},
	domain.ProviderKindNurse:  {"Home Care", "Wound Care", "Maternal Care", "Elderly Care"},
}

var presetDurations = []int{15, 30, 45, 60}

// GenerateRandomAvailabilitySettings turns on between three and six days with one random
// window each.
func GenerateRandomAvailabilitySettings() (domain.AvailabilitySettings, error) {
	e := schedule.NewEditor(nil, presetDurations[rand.Intn(len(presetDurations))], rand.Intn(2) == 0)

	// start from an empty week
	for _, d := range domain.Weekdays {
		s := e.Schedule()
		if s.Day(d).Available {
			e.ToggleDayAvailability(d)
		}
	}

	days := rand.Perm(len(domain.Weekdays))[:rand.Intn(4)+3]
	for _, i := range days {
		d := domain.Weekdays[i]
		e.ToggleDayAvailability(d)

		start := (7 + rand.Intn(4)) * 60
		end := start + (4+rand.Intn(6))*60
		if err := e.UpdateTime(d, 0, schedule.FieldStart, schedule.FormatDisplay(start)); err != nil {
			return domain.AvailabilitySettings{}, err
		}
		if err := e.UpdateTime(d, 0, schedule.FieldEnd, schedule.FormatDisplay(end)); err != nil {
			return domain.AvailabilitySettings{}, err
		}
	}

	var settings domain.AvailabilitySettings
	err := e.Save(context.Background(), func(_ context.Context, s domain.AvailabilitySchedule, duration int, repeat bool) error {
		settings = domain.AvailabilitySettings{Schedule: s, AppointmentDurationMinutes: duration, RepeatWeekly: repeat}
		return nil
	})
	return settings, err
}

func GenerateRandomProvider(user *domain.User) (*domain.Provider, error) {
	kind := domain.ProviderKindDoctor
	if user.Role == domain.RoleNurse {
		kind = domain.ProviderKindNurse
	}

	settings, err := GenerateRandomAvailabilitySettings()
	if err != nil {
		return nil, err
	}

	return &domain.Provider{
		UserID:    user.ID,
		Kind:      kind,
		FullName:  user.FullName,
		Specialty: specialties[kind][rand.Intn(len(specialties[kind]))],
		Settings:  settings,
	}, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
