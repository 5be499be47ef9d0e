package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cerbrary/cerbrary/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明:
// 1. GORM v2 + MySQL驱动
// 2. 连接池参数来自配置(MaxOpenConns/MaxIdleConns/ConnMaxLifetime)
// 3. debug模式打印SQL,release关闭
// 4. AutoMigrate只在启动时补表补列,生产环境应使用版本化迁移脚本
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段,不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&TransactionModel{},
	)
}

// UserModel GORM用户模型
// infrastructure层的数据模型,带GORM tag;
// domain/user/entity.go是领域实体,不依赖GORM,Repository负责转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:50;not null;comment:姓名"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Role      string         `gorm:"size:10;not null;default:USER;comment:角色(USER/ADMIN)"`
	Status    string         `gorm:"index;size:10;not null;default:PENDING;comment:审批状态(PENDING/APPROVED/REJECTED)"`
	Enabled   bool           `gorm:"not null;default:true;comment:是否启用"`
	Image     string         `gorm:"size:500;comment:头像URL"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. AvailableCopies/TotalCopies是库存核心,不变量0<=available<=total
//    只通过ReserveCopy/ReleaseCopy的条件UPDATE修改
// 2. ISBN可选,用指针映射为NULL,唯一索引只约束非NULL值
// 3. 搜索/筛选列加索引
type BookModel struct {
	ID              uint           `gorm:"primaryKey"`
	Title           string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author          string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Genre           string         `gorm:"index;size:50;comment:类别"`
	PublicationYear int            `gorm:"index;comment:出版年份"`
	ISBN            *string        `gorm:"uniqueIndex;size:20;comment:ISBN号(可选)"`
	Description     string         `gorm:"type:text;comment:图书描述"`
	CoverImageURL   string         `gorm:"size:500;comment:封面图片URL"`
	TotalCopies     int            `gorm:"not null;default:0;comment:馆藏副本总数"`
	AvailableCopies int            `gorm:"not null;default:0;comment:可借副本数"`
	CreatedByID     uint           `gorm:"index;comment:录入者用户ID"`
	CreatedAt       time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// TransactionModel GORM借阅记录模型
// 设计说明:
// 1. Status用tinyint存储(1借阅中2已归还3已取消),节省空间便于索引
// 2. 借阅记录永不删除,没有DeletedAt
// 3. (book_id, status)复合索引服务"某书是否有未归还借阅"的检查
type TransactionModel struct {
	ID         uint       `gorm:"primaryKey"`
	BookID     uint       `gorm:"index:idx_book_status;not null;comment:图书ID"`
	UserID     uint       `gorm:"index;not null;comment:借阅人用户ID"`
	Type       string     `gorm:"size:10;not null;default:LOAN;comment:借阅类型"`
	Status     int        `gorm:"index:idx_book_status;type:tinyint;not null;default:1;comment:状态(1借阅中2已归还3已取消)"`
	LoanDate   time.Time  `gorm:"not null;comment:借出时间"`
	DueDate    time.Time  `gorm:"not null;comment:应还时间"`
	ReturnDate *time.Time `gorm:"comment:实际归还时间"`
	CreatedAt  time.Time  `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (TransactionModel) TableName() string {
	return "transactions"
}
