package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleMember,
	domain.RoleOrganizer,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	displayName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(displayName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		DisplayName:  displayName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// 随机生成一周中若干个空闲格子
func GenerateRandomAvailabilityEdits() []domain.AvailabilityEdit {
	count := rand.Intn(30) + 10
	seen := make(map[[2]int32]bool)
	edits := make([]domain.AvailabilityEdit, 0, count)

	for len(edits) < count {
		day := int32(rand.Intn(7))
		hour := int32(rand.Intn(24))
		if seen[[2]int32{day, hour}] {
			continue
		}
		seen[[2]int32{day, hour}] = true
		edits = append(edits, domain.AvailabilityEdit{
			DayOfWeek: day,
			Hour:      hour,
			Status:    domain.SlotAvailable,
		})
	}

	return edits
}

// 随机生成一个活动时间段，开始时间可能带半小时偏移
func GenerateRandomEventBlock() domain.EventBlock {
	startHour := float64(rand.Intn(20))
	if rand.Intn(2) == 0 {
		startHour += 0.5
	}
	duration := float64(rand.Intn(3) + 1)

	return domain.EventBlock{
		DayOfWeek: int32(rand.Intn(7)),
		StartHour: startHour,
		EndHour:   startHour + duration,
		Note:      "集合时间" + GenerateRandomID(0, 2),
	}
}

func GenerateRandomEvent(createdBy int64) *domain.Event {
	mode := domain.GameModeRoleBased
	capacities := domain.RosterCapacity{
		domain.RosterRoleTank:   int32(rand.Intn(2) + 1),
		domain.RosterRoleHealer: int32(rand.Intn(3) + 1),
		domain.RosterRoleDPS:    int32(rand.Intn(10) + 5),
		domain.RosterRoleFlex:   int32(rand.Intn(3) + 1),
	}

	if rand.Intn(3) == 0 {
		mode = domain.GameModeGeneric
		capacities = domain.RosterCapacity{
			domain.RosterRolePlayer: int32(rand.Intn(15) + 5),
			domain.RosterRoleBench:  int32(rand.Intn(5) + 1),
		}
	}

	blocksNum := rand.Intn(3) + 1
	blocks := make([]domain.EventBlock, blocksNum)
	for i := range blocks {
		blocks[i] = GenerateRandomEventBlock()
	}

	return &domain.Event{
		Title:       "活动" + GenerateRandomID(3, 3),
		Description: "活动描述" + GenerateRandomID(20, 10),
		Mode:        mode,
		Capacities:  capacities,
		Blocks:      blocks,
		CreatedBy:   createdBy,
	}
}
