package analysis

// Prompt is sent with every question image. ParseResponse depends on the
// EXAM_TYPE / SUBJECT / TOPIC labels it asks for.
const Prompt = `This image contains an LGS or YKS exam question. Identify:

1. Whether it is an LGS or a YKS question, and for YKS whether it is TYT or AYT.
2. Which subject it belongs to, using the Turkish curriculum name (Türkçe, Matematik, Fen Bilimleri, Fizik, Kimya, Biyoloji, etc.).
3. Which curriculum topic it belongs to. Be as specific as possible.

Answer in exactly this format:
EXAM_TYPE: [LGS/YKS-TYT/YKS-AYT]
SUBJECT: [subject name]
TOPIC: [topic name]
DESCRIPTION: [short description of the question]`
