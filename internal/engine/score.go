package engine

import "exam_prep_backend/internal/model"

// AnswerObservation 计分所需的单题作答快照
type AnswerObservation struct {
	Selected      *int
	CorrectOption int
	Marks         float64
}

// Score 计算一次测试的百分制得分。分母随测试类型变化：
// 模考和常规测试按总题数计（未作答视为错误），练习和自适应测试
// 按已作答题数计。未识别的类型按已作答题数处理，known 返回 false
// 由调用方记告警。纯函数，对已计分的会话重算得到相同结果。
func Score(testType model.TestType, answers []AnswerObservation) (score float64, known bool) {
	correct := 0
	attempted := 0
	for _, a := range answers {
		if a.Selected == nil {
			continue
		}
		attempted++
		if *a.Selected == a.CorrectOption && a.Marks > 0 {
			correct++
		}
	}

	known = true
	var denominator int
	switch testType {
	case model.TestMock, model.TestRegular:
		denominator = len(answers)
	case model.TestAdaptive, model.TestPractice:
		denominator = attempted
	default:
		denominator = attempted
		known = false
	}

	if denominator == 0 {
		return 0, known
	}
	return 100 * float64(correct) / float64(denominator), known
}
