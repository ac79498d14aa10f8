package service

import (
	"context"
	"errors"
	"strings"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/repository"
)

type LikeResult struct {
	StadiumID uint   `json:"stadiumId"`
	Status    string `json:"status"`
}

type StadiumLikeView struct {
	StadiumID uint    `json:"stadiumId"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	ImgURL    string  `json:"imgUrl"`
	StarAvg   float64 `json:"starAvg"`
}

type StadiumLikeService struct {
	members  repository.MemberRepository
	stadiums repository.StadiumRepository
	likes    repository.StadiumLikeRepository
}

func NewStadiumLikeService(members repository.MemberRepository, stadiums repository.StadiumRepository, likes repository.StadiumLikeRepository) *StadiumLikeService {
	return &StadiumLikeService{members: members, stadiums: stadiums, likes: likes}
}

// Likes turns a like ON or OFF. Both directions are idempotent.
func (s *StadiumLikeService) Likes(ctx context.Context, email string, stadiumID uint, likeType string) (*LikeResult, error) {
	likeType = strings.ToUpper(strings.TrimSpace(likeType))
	if likeType != domain.LikeTypeOn && likeType != domain.LikeTypeOff {
		observability.RecordStadiumLike(ctx, "invalid", "rejected")
		return nil, ErrInvalidLikeType
	}
	member, err := s.member(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.stadiums.FindByID(ctx, stadiumID); err != nil {
		if errors.Is(err, repository.ErrStadiumNotFound) {
			observability.RecordStadiumLike(ctx, likeType, "stadium_not_found")
			return nil, ErrStadiumNotFound
		}
		return nil, err
	}

	if likeType == domain.LikeTypeOn {
		err = s.likes.Like(ctx, member.ID, stadiumID)
	} else {
		err = s.likes.Unlike(ctx, member.ID, stadiumID)
	}
	if err != nil {
		observability.RecordStadiumLike(ctx, likeType, "error")
		return nil, err
	}
	observability.RecordStadiumLike(ctx, likeType, "success")
	return &LikeResult{StadiumID: stadiumID, Status: likeType}, nil
}

func (s *StadiumLikeService) LikeList(ctx context.Context, email string, req repository.PageRequest) (repository.PageResult[StadiumLikeView], error) {
	member, err := s.member(ctx, email)
	if err != nil {
		return repository.PageResult[StadiumLikeView]{}, err
	}
	page, err := s.likes.ListByMember(ctx, member.ID, req)
	if err != nil {
		return repository.PageResult[StadiumLikeView]{}, err
	}
	out := repository.PageResult[StadiumLikeView]{
		Items:      make([]StadiumLikeView, 0, len(page.Items)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for _, item := range page.Items {
		out.Items = append(out.Items, StadiumLikeView{
			StadiumID: item.StadiumID,
			Name:      item.Name,
			Address:   item.Address,
			ImgURL:    item.MainImg,
			StarAvg:   item.StarAvg,
		})
	}
	return out, nil
}

func (s *StadiumLikeService) member(ctx context.Context, email string) (*domain.Member, error) {
	if email == "" {
		return nil, ErrNotAuthenticated
	}
	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return member, nil
}
